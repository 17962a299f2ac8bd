package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

// Compile-time check: *Service must satisfy store.ProfileStore.
var _ store.ProfileStore = (*Service)(nil)

// Service is the SQLite-backed profile store. Every per-user write is a
// single transactional read-modify-write guarded by an optimistic
// version column on the profile row, so a double-submitted report can
// never apply twice against stale state.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	if cfg.CreateDemoProfiles {
		service.createDemoProfiles(ctx)
	} else {
		zap.L().Info("Skipping demo profile creation (CREATE_DEMO_PROFILES=false)")
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- One document per user: energy, streak, active guardian, version
	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		current_energy INTEGER NOT NULL DEFAULT 0 CHECK(current_energy >= 0),
		total_earned INTEGER NOT NULL DEFAULT 0 CHECK(total_earned >= 0),
		current_streak INTEGER NOT NULL DEFAULT 0 CHECK(current_streak >= 0),
		longest_streak INTEGER NOT NULL DEFAULT 0 CHECK(longest_streak >= current_streak),
		last_report_date TEXT NOT NULL DEFAULT '',
		active_guardian_id TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Per-user guardian state. Stage is never stored: it is derived
	-- from invested_energy against the evolution table.
	CREATE TABLE IF NOT EXISTS guardian_instances (
		user_id TEXT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
		guardian_id TEXT NOT NULL,
		unlocked INTEGER NOT NULL DEFAULT 0,
		invested_energy INTEGER NOT NULL DEFAULT 0 CHECK(invested_energy >= 0),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, guardian_id)
	);

	-- Append-only evolution log
	CREATE TABLE IF NOT EXISTS guardian_memories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		guardian_id TEXT NOT NULL,
		from_stage INTEGER NOT NULL,
		to_stage INTEGER NOT NULL,
		invested_at_transition INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user_guardian ON guardian_memories(user_id, guardian_id);

	-- Daily energy ledger, keyed "{userId}_{date}" so re-submissions
	-- upsert instead of duplicating
	CREATE TABLE IF NOT EXISTS energy_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		daily_report INTEGER NOT NULL DEFAULT 0 CHECK(daily_report >= 0),
		streak_bonus INTEGER NOT NULL DEFAULT 0 CHECK(streak_bonus >= 0),
		performance_bonus INTEGER NOT NULL DEFAULT 0 CHECK(performance_bonus >= 0),
		weekly_bonus INTEGER NOT NULL DEFAULT 0 CHECK(weekly_bonus >= 0),
		total_earned INTEGER NOT NULL DEFAULT 0,
		streak_day INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_history_user_date ON energy_history(user_id, date);

	-- Raw reports for the anomaly window, same key format
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		views INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		replies INTEGER NOT NULL DEFAULT 0,
		new_followers INTEGER NOT NULL DEFAULT 0,
		post_count INTEGER NOT NULL DEFAULT 0,
		modification_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_reports_user_date ON reports(user_id, date);

	-- Immutable audit trail of every profile mutation
	CREATE TABLE IF NOT EXISTS energy_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		energy_before INTEGER NOT NULL,
		energy_after INTEGER NOT NULL,
		guardian_id TEXT NOT NULL DEFAULT '',
		reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_energy_tx_user ON energy_transactions(user_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Service) createDemoProfiles(ctx context.Context) {
	for _, userId := range []string{"demo-alice", "demo-bob", "demo-carol"} {
		if _, err := s.EnsureProfile(ctx, userId); err != nil {
			zap.L().Error("Failed to create demo profile", zap.String("user_id", userId), zap.Error(err))
		} else {
			zap.L().Info("Demo profile ready", zap.String("user_id", userId))
		}
	}
}
