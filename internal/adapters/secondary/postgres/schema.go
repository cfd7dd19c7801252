package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS activity (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT       NOT NULL,
		app_name         VARCHAR(50)  NOT NULL,
		window_title     VARCHAR(200) NOT NULL DEFAULT '',
		duration_seconds INTEGER      NOT NULL DEFAULT 0,
		fl_score         DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		timestamp_start  TIMESTAMPTZ  NOT NULL,
		timestamp_end    TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_user_start ON activity (user_id, timestamp_start DESC)`,
	`CREATE TABLE IF NOT EXISTS local_update (
		id              UUID PRIMARY KEY,
		model_version   VARCHAR(64) NOT NULL,
		model_state     JSONB       NOT NULL,
		local_accuracy  DOUBLE PRECISION NOT NULL,
		parameter_count INTEGER     NOT NULL,
		received_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_local_update_version ON local_update (model_version, received_at DESC)`,
}

// EnsureSchema creates the tables the repositories need if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
