package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/model"
)

// UserAggregate is the per-user raw material of the performance snapshot,
// produced by a full scan over completed attempts and their results.
type UserAggregate struct {
	UserID            int
	TotalAttempts     int
	CompletedAttempts int
	AvgRawScore       float64
	BestRawScore      float64
	WorstRawScore     float64
	AvgCompletion     float64
}

// StatsRepository handles the population-wide performance snapshot. The table
// is replaced wholesale on each run: a snapshot, not an incremental update.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// AggregatePerUser scans attempts joined with results, grouped per user.
// Personality results contribute their completion but not score averages
// (their raw score is a trait sum, not comparable across tests), so only
// graded results feed the score aggregates.
func (r *StatsRepository) AggregatePerUser(ctx context.Context) ([]UserAggregate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.user_id,
		        COUNT(a.id),
		        COUNT(a.id) FILTER (WHERE a.status = 'completed'),
		        COALESCE(AVG(res.raw_score) FILTER (WHERE res.grade IS NOT NULL), 0),
		        COALESCE(MAX(res.raw_score) FILTER (WHERE res.grade IS NOT NULL), 0),
		        COALESCE(MIN(res.raw_score) FILTER (WHERE res.grade IS NOT NULL), 0),
		        COALESCE(AVG(res.completion_percentage), 0)
		 FROM attempts a
		 LEFT JOIN results res ON res.attempt_id = a.id
		 GROUP BY a.user_id
		 ORDER BY a.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []UserAggregate
	for rows.Next() {
		var agg UserAggregate
		if err := rows.Scan(&agg.UserID, &agg.TotalAttempts, &agg.CompletedAttempts,
			&agg.AvgRawScore, &agg.BestRawScore, &agg.WorstRawScore, &agg.AvgCompletion); err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, rows.Err()
}

// ReplaceAll swaps the whole snapshot inside one transaction: delete-all,
// then a batched CopyFrom insert.
func (r *StatsRepository) ReplaceAll(ctx context.Context, stats []model.UserPerformanceStats) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_performance_stats`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	if len(stats) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"user_performance_stats"},
			[]string{"user_id", "total_attempts", "completed_attempts",
				"avg_raw_score", "best_raw_score", "worst_raw_score",
				"completion_rate", "consistency_score", "rank", "percentile",
				"snapshot_at"},
			pgx.CopyFromSlice(len(stats), func(i int) ([]any, error) {
				s := stats[i]
				return []any{s.UserID, s.TotalAttempts, s.CompletedAttempts,
					s.AvgRawScore, s.BestRawScore, s.WorstRawScore,
					s.CompletionRate, s.ConsistencyScore, s.Rank, s.Percentile,
					s.SnapshotAt}, nil
			}))
		if err != nil {
			return fmt.Errorf("copy snapshot: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// List returns one page of the current snapshot ordered by rank, plus the
// total row count.
func (r *StatsRepository) List(ctx context.Context, limit, offset int) ([]model.UserPerformanceStats, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_performance_stats`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, total_attempts, completed_attempts, avg_raw_score,
		        best_raw_score, worst_raw_score, completion_rate,
		        consistency_score, rank, percentile, snapshot_at
		 FROM user_performance_stats
		 ORDER BY rank
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var stats []model.UserPerformanceStats
	for rows.Next() {
		var s model.UserPerformanceStats
		if err := rows.Scan(&s.UserID, &s.TotalAttempts, &s.CompletedAttempts,
			&s.AvgRawScore, &s.BestRawScore, &s.WorstRawScore, &s.CompletionRate,
			&s.ConsistencyScore, &s.Rank, &s.Percentile, &s.SnapshotAt); err != nil {
			return nil, 0, err
		}
		stats = append(stats, s)
	}
	return stats, total, rows.Err()
}
