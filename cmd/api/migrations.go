package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
)

// Tables read and written by the matchmaker. User accounts live in the
// account service; user ids here are opaque strings.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dating_profiles (
		user_id VARCHAR(64) PRIMARY KEY,
		birth_date DATE,
		location_lat DOUBLE PRECISION,
		location_lng DOUBLE PRECISION,
		interests TEXT[] DEFAULT '{}',
		personality_traits JSONB,
		relationship_intention VARCHAR(20),
		timeline_expectation VARCHAR(20),
		dating_history JSONB,
		attachment_style VARCHAR(20),
		lifestyle JSONB,
		dealbreakers TEXT[] DEFAULT '{}',
		is_premium BOOLEAN NOT NULL DEFAULT FALSE,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		last_active TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS user_blocks (
		blocker_id VARCHAR(64) NOT NULL,
		blocked_id VARCHAR(64) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (blocker_id, blocked_id)
	)`,

	`CREATE TABLE IF NOT EXISTS user_reports (
		id SERIAL PRIMARY KEY,
		reporter_id VARCHAR(64) NOT NULL,
		reported_id VARCHAR(64) NOT NULL,
		reason TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS match_interactions (
		id UUID PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		target_id VARCHAR(64) NOT NULL,
		action VARCHAR(20) NOT NULL,
		source VARCHAR(20),
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// created_at is without time zone so DATE(created_at) can be indexed.
	`CREATE TABLE IF NOT EXISTS hotpicks (
		id BIGSERIAL PRIMARY KEY,
		batch_id VARCHAR(64) NOT NULL,
		user_id VARCHAR(64) NOT NULL,
		recommended_user_id VARCHAR(64) NOT NULL,
		score INTEGER NOT NULL,
		reason TEXT,
		factors JSONB,
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		is_seen BOOLEAN NOT NULL DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_dating_profiles_last_active ON dating_profiles(last_active DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_user_reports_reported ON user_reports(reported_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_match_interactions_user ON match_interactions(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_match_interactions_pair ON match_interactions(user_id, target_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_hotpicks_daily ON hotpicks(user_id, recommended_user_id, DATE(created_at))`,
	`CREATE INDEX IF NOT EXISTS idx_hotpicks_user ON hotpicks(user_id, is_featured DESC, score DESC)`,
}

// runMigrations creates the matchmaker tables if they are missing.
func runMigrations(ctx context.Context, db *sqlx.DB, log logger.Logger) error {
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			log.Debug("migration skipped (already exists)", map[string]interface{}{"migration": i + 1})
		}
	}

	log.Info("database migrations completed", map[string]interface{}{"count": len(migrations)})
	return nil
}
