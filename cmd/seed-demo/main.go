package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katalis-id/psikotes-backend/internal/config"
	"github.com/katalis-id/psikotes-backend/internal/database"
	"github.com/katalis-id/psikotes-backend/internal/logger"
	"github.com/katalis-id/psikotes-backend/internal/repository"
	"github.com/katalis-id/psikotes-backend/internal/service"
	"github.com/rs/zerolog"
)

// Seeds a demo data set: one admin, ten participants, one cognitive test,
// one DISC test, and an active session carrying both as modules.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	participantRepo := repository.NewParticipantRepository(pool)
	authSessionRepo := repository.NewAuthSessionRepository(pool)
	authService := service.NewAuthService(cfg, rdb, participantRepo, authSessionRepo)

	passwordHash, err := authService.HashPassword("rahasia123")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	fmt.Println("=== Seeding Demo Data ===")

	if _, err := pool.Exec(ctx,
		`INSERT INTO admins (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO NOTHING`,
		"admin@katalis.id", "Admin Demo", passwordHash); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin")
	}
	fmt.Println("Seeded admin admin@katalis.id")

	names := []string{
		"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo",
		"Ayu Lestari", "Dodi Kusuma", "Eka Putri", "Fahri Hamzah", "Gita Savitri",
	}
	for i, name := range names {
		email := fmt.Sprintf("peserta%d@katalis.id", i+1)
		if _, err := pool.Exec(ctx,
			`INSERT INTO participants (email, name, password_hash)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (email) DO NOTHING`,
			email, name, passwordHash); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed participant")
		}
	}
	fmt.Printf("Seeded %d participants\n", len(names))

	cognitiveID := seedCognitiveTest(ctx, pool, log)
	discID := seedDISCTest(ctx, pool, log)
	seedSession(ctx, pool, log, cognitiveID, discID)

	fmt.Println("=== Done ===")
}

func seedCognitiveTest(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) uuid.UUID {
	testID := uuid.New()
	err := pool.QueryRow(ctx,
		`INSERT INTO tests (id, name, module_type, category, question_type,
		   time_limit_minutes, total_questions, passing_score)
		 VALUES ($1, 'Tes Logika Dasar', 'cognitive', 'logic', 'multiple_choice', 30, 5, 60)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, testID).Scan(&testID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed cognitive test")
	}

	options := []map[string]string{
		{"key": "a", "label": "Pilihan A"},
		{"key": "b", "label": "Pilihan B"},
		{"key": "c", "label": "Pilihan C"},
		{"key": "d", "label": "Pilihan D"},
	}
	optionsJSON, _ := json.Marshal(options)

	correct := []string{"a", "c", "b", "d", "a"}
	for i, answer := range correct {
		if _, err := pool.Exec(ctx,
			`INSERT INTO questions (test_id, question_text, question_type, options,
			   correct_answer, sequence)
			 VALUES ($1, $2, 'multiple_choice', $3, $4, $5)
			 ON CONFLICT DO NOTHING`,
			testID, fmt.Sprintf("Soal logika nomor %d", i+1),
			optionsJSON, answer, i+1); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed cognitive question")
		}
	}

	fmt.Println("Seeded cognitive test:", testID)
	return testID
}

func seedDISCTest(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) uuid.UUID {
	testID := uuid.New()
	err := pool.QueryRow(ctx,
		`INSERT INTO tests (id, name, module_type, category, question_type,
		   time_limit_minutes, total_questions, passing_score)
		 VALUES ($1, 'Tes Kepribadian DISC', 'disc', 'personality', 'rating_scale', 20, 8, 0)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`, testID).Scan(&testID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed DISC test")
	}

	traits := []string{
		"dominance", "influence", "steadiness", "compliance",
		"dominance", "influence", "steadiness", "compliance",
	}
	for i, trait := range traits {
		keyJSON, _ := json.Marshal(map[string]string{"trait": trait})
		if _, err := pool.Exec(ctx,
			`INSERT INTO questions (test_id, question_text, question_type,
			   scoring_key, sequence)
			 VALUES ($1, $2, 'rating_scale', $3, $4)
			 ON CONFLICT DO NOTHING`,
			testID, fmt.Sprintf("Pernyataan kepribadian nomor %d", i+1),
			keyJSON, i+1); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed DISC question")
		}
	}

	fmt.Println("Seeded DISC test:", testID)
	return testID
}

func seedSession(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cognitiveID, discID uuid.UUID) {
	sessionID := uuid.New()
	now := time.Now()
	err := pool.QueryRow(ctx,
		`INSERT INTO test_sessions (id, code, name, status, start_time, end_time, auto_expire)
		 VALUES ($1, 'DEMO2026', 'Sesi Rekrutmen Demo', 'active', $2, $3, true)
		 ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		 RETURNING id`,
		sessionID, now.Add(-time.Hour), now.Add(7*24*time.Hour)).Scan(&sessionID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed session")
	}

	modules := []struct {
		testID   uuid.UUID
		weight   float64
		position int
	}{
		{cognitiveID, 0.6, 1},
		{discID, 0.4, 2},
	}
	for _, m := range modules {
		if _, err := pool.Exec(ctx,
			`INSERT INTO session_modules (session_id, test_id, weight, position)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (session_id, test_id) DO UPDATE SET weight = EXCLUDED.weight`,
			sessionID, m.testID, m.weight, m.position); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed session module")
		}
	}

	fmt.Println("Seeded session DEMO2026:", sessionID)
}
