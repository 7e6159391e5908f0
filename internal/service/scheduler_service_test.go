package service

import (
	"testing"
	"time"

	"github.com/katalis-id/psikotes-backend/internal/repository"
)

func TestBuildPerformanceSnapshotRanking(t *testing.T) {
	now := time.Date(2026, 4, 1, 3, 0, 0, 0, time.UTC)
	aggs := []repository.UserAggregate{
		{UserID: 3, CompletedAttempts: 2, AvgRawScore: 50, BestRawScore: 60, WorstRawScore: 40},
		{UserID: 1, CompletedAttempts: 1, AvgRawScore: 80, BestRawScore: 80, WorstRawScore: 80},
		{UserID: 2, CompletedAttempts: 3, AvgRawScore: 80, BestRawScore: 90, WorstRawScore: 45},
		{UserID: 4, CompletedAttempts: 1, AvgRawScore: 20, BestRawScore: 20, WorstRawScore: 20},
	}

	stats := BuildPerformanceSnapshot(aggs, now)
	if len(stats) != 4 {
		t.Fatalf("got %d rows, want 4", len(stats))
	}

	// Average score descending, user ID ascending on ties.
	wantOrder := []int{1, 2, 3, 4}
	for i, want := range wantOrder {
		if stats[i].UserID != want {
			t.Errorf("rank %d: user = %d, want %d", i+1, stats[i].UserID, want)
		}
		if stats[i].Rank != i+1 {
			t.Errorf("user %d: rank = %d, want %d", stats[i].UserID, stats[i].Rank, i+1)
		}
	}

	wantPercentile := []float64{75, 50, 25, 0}
	for i, want := range wantPercentile {
		if stats[i].Percentile != want {
			t.Errorf("user %d: percentile = %v, want %v", stats[i].UserID, stats[i].Percentile, want)
		}
	}

	for _, s := range stats {
		if !s.SnapshotAt.Equal(now) {
			t.Errorf("user %d: snapshot_at = %v, want %v", s.UserID, s.SnapshotAt, now)
		}
	}

	if aggs[0].UserID != 3 {
		t.Error("input slice was reordered in place")
	}
}

func TestBuildPerformanceSnapshotConsistency(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		agg  repository.UserAggregate
		want float64
	}{
		{
			name: "single score is perfectly consistent",
			agg:  repository.UserAggregate{UserID: 1, CompletedAttempts: 1, AvgRawScore: 70, BestRawScore: 70, WorstRawScore: 70},
			want: 100,
		},
		{
			name: "half spread",
			agg:  repository.UserAggregate{UserID: 1, CompletedAttempts: 2, AvgRawScore: 60, BestRawScore: 80, WorstRawScore: 40},
			want: 50,
		},
		{
			name: "worst of zero clamps to zero",
			agg:  repository.UserAggregate{UserID: 1, CompletedAttempts: 2, AvgRawScore: 40, BestRawScore: 80, WorstRawScore: 0},
			want: 0,
		},
		{
			name: "no completed attempts",
			agg:  repository.UserAggregate{UserID: 1, TotalAttempts: 2},
			want: 0,
		},
		{
			name: "best score of zero",
			agg:  repository.UserAggregate{UserID: 1, CompletedAttempts: 1},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := BuildPerformanceSnapshot([]repository.UserAggregate{tt.agg}, now)
			if got := stats[0].ConsistencyScore; got != tt.want {
				t.Errorf("ConsistencyScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildPerformanceSnapshotEmpty(t *testing.T) {
	stats := BuildPerformanceSnapshot(nil, time.Now())
	if len(stats) != 0 {
		t.Errorf("got %d rows, want 0", len(stats))
	}
}
