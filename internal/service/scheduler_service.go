package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/katalis-id/psikotes-backend/internal/model"
	"github.com/katalis-id/psikotes-backend/internal/repository"
	"github.com/rs/zerolog"
)

// SchedulerReport summarizes one scheduler pass. Per-job errors are collected
// here instead of aborting the pass: one failing job never blocks the rest.
type SchedulerReport struct {
	RanAt               time.Time `json:"ran_at"`
	SessionsExpired     int64     `json:"sessions_expired"`
	SessionsActivated   int64     `json:"sessions_activated"`
	StatsRows           int       `json:"stats_rows"`
	AuthSessionsCleaned int64     `json:"auth_sessions_cleaned"`
	Errors              []string  `json:"errors,omitempty"`
}

// SchedulerService runs the periodic maintenance jobs: session expiry,
// session activation, the performance snapshot rebuild, and login session
// cleanup. The clock is injectable so job semantics can be tested against a
// fixed instant.
type SchedulerService struct {
	sessions     *repository.SessionRepository
	stats        *repository.StatsRepository
	authSessions *repository.AuthSessionRepository
	log          zerolog.Logger
	interval     time.Duration
	clock        func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewSchedulerService creates a new SchedulerService.
func NewSchedulerService(
	sessions *repository.SessionRepository,
	stats *repository.StatsRepository,
	authSessions *repository.AuthSessionRepository,
	interval time.Duration,
	log zerolog.Logger,
) *SchedulerService {
	return &SchedulerService{
		sessions:     sessions,
		stats:        stats,
		authSessions: authSessions,
		log:          log.With().Str("service", "scheduler").Logger(),
		interval:     interval,
		clock:        time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the periodic loop in its own goroutine.
func (s *SchedulerService) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
		for {
			select {
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunAll(ctx)
			}
		}
	}()
}

// Stop terminates the loop and waits for the current pass to finish.
func (s *SchedulerService) Stop() {
	close(s.stop)
	<-s.done
	s.log.Info().Msg("scheduler stopped")
}

// RunAll executes every maintenance job once. Also the admin's manual
// trigger. Jobs are isolated: a failure is recorded and the pass continues.
func (s *SchedulerService) RunAll(ctx context.Context) *SchedulerReport {
	now := s.clock()
	report := &SchedulerReport{RanAt: now}

	expired, err := s.sessions.ExpireDue(ctx, now)
	if err != nil {
		s.jobFailed(report, "expire_sessions", err)
	} else {
		report.SessionsExpired = expired
	}

	activated, err := s.sessions.ActivateDue(ctx, now)
	if err != nil {
		s.jobFailed(report, "activate_sessions", err)
	} else {
		report.SessionsActivated = activated
	}

	rows, err := s.rebuildStats(ctx, now)
	if err != nil {
		s.jobFailed(report, "rebuild_stats", err)
	} else {
		report.StatsRows = rows
	}

	cleaned, err := s.authSessions.DeleteExpired(ctx, now)
	if err != nil {
		s.jobFailed(report, "cleanup_auth_sessions", err)
	} else {
		report.AuthSessionsCleaned = cleaned
	}

	s.log.Info().
		Int64("sessions_expired", report.SessionsExpired).
		Int64("sessions_activated", report.SessionsActivated).
		Int("stats_rows", report.StatsRows).
		Int64("auth_sessions_cleaned", report.AuthSessionsCleaned).
		Int("failed_jobs", len(report.Errors)).
		Msg("scheduler pass finished")

	return report
}

// rebuildStats replaces the performance snapshot wholesale from a fresh
// aggregation pass.
func (s *SchedulerService) rebuildStats(ctx context.Context, now time.Time) (int, error) {
	aggs, err := s.stats.AggregatePerUser(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate: %w", err)
	}
	snapshot := BuildPerformanceSnapshot(aggs, now)
	if err := s.stats.ReplaceAll(ctx, snapshot); err != nil {
		return 0, fmt.Errorf("replace: %w", err)
	}
	return len(snapshot), nil
}

func (s *SchedulerService) jobFailed(report *SchedulerReport, job string, err error) {
	s.log.Error().Err(err).Str("job", job).Msg("scheduler job failed")
	report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", job, err))
}

// BuildPerformanceSnapshot ranks the per-user aggregates into snapshot rows.
// Users are ordered by average raw score descending, ties broken by user ID
// so reruns over the same data produce the same ranking. Percentile is the
// share of users ranked strictly below. Consistency is 100 minus the user's
// score range normalized against their best score; a user with no graded
// results scores zero consistency.
func BuildPerformanceSnapshot(aggs []repository.UserAggregate, now time.Time) []model.UserPerformanceStats {
	sorted := make([]repository.UserAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AvgRawScore != sorted[j].AvgRawScore {
			return sorted[i].AvgRawScore > sorted[j].AvgRawScore
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	n := len(sorted)
	stats := make([]model.UserPerformanceStats, 0, n)
	for i, agg := range sorted {
		rank := i + 1

		consistency := 0.0
		if agg.CompletedAttempts > 0 && agg.BestRawScore > 0 {
			spread := (agg.BestRawScore - agg.WorstRawScore) / agg.BestRawScore * 100
			consistency = 100 - spread
			if consistency < 0 {
				consistency = 0
			}
		}

		stats = append(stats, model.UserPerformanceStats{
			UserID:            agg.UserID,
			TotalAttempts:     agg.TotalAttempts,
			CompletedAttempts: agg.CompletedAttempts,
			AvgRawScore:       agg.AvgRawScore,
			BestRawScore:      agg.BestRawScore,
			WorstRawScore:     agg.WorstRawScore,
			CompletionRate:    agg.AvgCompletion,
			ConsistencyScore:  consistency,
			Rank:              rank,
			Percentile:        float64(n-rank) / float64(n) * 100,
			SnapshotAt:        now,
		})
	}
	return stats
}
