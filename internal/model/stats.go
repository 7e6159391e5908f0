package model

import "time"

// UserPerformanceStats is one row of the population-wide performance
// snapshot. The whole table is replaced on each scheduler run; rank and
// percentile are relative to all users in that snapshot.
type UserPerformanceStats struct {
	UserID            int       `json:"user_id"`
	TotalAttempts     int       `json:"total_attempts"`
	CompletedAttempts int       `json:"completed_attempts"`
	AvgRawScore       float64   `json:"avg_raw_score"`
	BestRawScore      float64   `json:"best_raw_score"`
	WorstRawScore     float64   `json:"worst_raw_score"`
	CompletionRate    float64   `json:"completion_rate"`
	ConsistencyScore  float64   `json:"consistency_score"`
	Rank              int       `json:"rank"`
	Percentile        float64   `json:"percentile"`
	SnapshotAt        time.Time `json:"snapshot_at"`
}
