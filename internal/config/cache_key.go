package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ParticipantSessionKey returns the cache key for a participant's login session
func (r *CacheKeyStruct) ParticipantSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// AttemptDraftsKey returns the cache key for an attempt's draft answer buffer
func (r *CacheKeyStruct) AttemptDraftsKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:drafts", attemptID)
}

// AttemptProgressChannel returns the Redis PubSub channel for attempt progress events
func (r *CacheKeyStruct) AttemptProgressChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:progress", sessionID)
}

// TestQuestionsKey returns the cache key for a test's question payload
func (r *CacheKeyStruct) TestQuestionsKey(testID string) string {
	return fmt.Sprintf("test:%s:questions", testID)
}

var CacheKey = NewCacheKeyStruct()
