package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fedclassroom/internal/core/domain"
	ports "fedclassroom/internal/core/ports/output"
)

type activityRepo struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(pool *pgxpool.Pool) ports.ActivityRepository {
	return &activityRepo{pool: pool}
}

func (r *activityRepo) Create(ctx context.Context, activity *domain.Activity) error {
	query := `
		INSERT INTO activity (user_id, app_name, window_title, duration_seconds, fl_score, timestamp_start, timestamp_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		activity.UserID,
		activity.AppName,
		activity.WindowTitle,
		activity.DurationSeconds,
		activity.FLScore,
		activity.TimestampStart,
		activity.TimestampEnd,
	).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *activityRepo) List(ctx context.Context, filter ports.ActivityListFilter) ([]*domain.Activity, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, filter.UserID)
		argPos++
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp_start >= $%d", argPos))
		args = append(args, filter.Since)
		argPos++
	}

	whereClause := "1=1"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activity WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, app_name, window_title, duration_seconds, fl_score, timestamp_start, timestamp_end
		FROM activity
		WHERE %s
		ORDER BY timestamp_start DESC, id DESC
	`, whereClause)

	// Limit 0 loads everything in the window (dashboards)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := []*domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, total, nil
}

func (r *activityRepo) StudentStats(ctx context.Context, since time.Time) ([]domain.StudentStat, error) {
	query := `
		SELECT user_id, ROUND(SUM(duration_seconds) / 60.0, 1)::float8 AS total_minutes, COUNT(*)
		FROM activity
		WHERE timestamp_start >= $1
		GROUP BY user_id
		ORDER BY total_minutes DESC, user_id
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query student stats: %w", err)
	}
	defer rows.Close()

	stats := []domain.StudentStat{}
	for rows.Next() {
		var st domain.StudentStat
		if err := rows.Scan(&st.UserID, &st.TotalMinutes, &st.ActivityCount); err != nil {
			return nil, fmt.Errorf("scan student stat: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student stats: %w", err)
	}
	return stats, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AppName,
		&a.WindowTitle,
		&a.DurationSeconds,
		&a.FLScore,
		&a.TimestampStart,
		&a.TimestampEnd,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
