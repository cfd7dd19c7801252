package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fedclassroom/internal/core/domain"
	ports "fedclassroom/internal/core/ports/output"
)

type localUpdateRepo struct {
	pool *pgxpool.Pool
}

// NewLocalUpdateRepository creates a repository for client weight uploads
func NewLocalUpdateRepository(pool *pgxpool.Pool) ports.LocalUpdateRepository {
	return &localUpdateRepo{pool: pool}
}

func (r *localUpdateRepo) Create(ctx context.Context, update *domain.LocalUpdate) error {
	stateJSON, err := json.Marshal(update.State)
	if err != nil {
		return fmt.Errorf("marshal model_state: %w", err)
	}

	query := `
		INSERT INTO local_update (id, model_version, model_state, local_accuracy, parameter_count, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.pool.Exec(ctx, query,
		update.ID,
		update.ModelVersion,
		stateJSON,
		update.LocalAccuracy,
		update.ParameterCount,
		update.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert local_update: %w", err)
	}
	return nil
}

func (r *localUpdateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LocalUpdate, error) {
	query := `
		SELECT id, model_version, model_state, local_accuracy, parameter_count, received_at
		FROM local_update
		WHERE id = $1
	`
	var (
		u         domain.LocalUpdate
		stateJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.ModelVersion,
		&stateJSON,
		&u.LocalAccuracy,
		&u.ParameterCount,
		&u.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUpdateNotFound
		}
		return nil, fmt.Errorf("get local_update by id: %w", err)
	}
	if err := json.Unmarshal(stateJSON, &u.State); err != nil {
		return nil, fmt.Errorf("unmarshal model_state: %w", err)
	}
	return &u, nil
}

func (r *localUpdateRepo) List(ctx context.Context, filter ports.UpdateListFilter) ([]*domain.LocalUpdate, int, error) {
	whereClause := "1=1"
	args := []interface{}{}
	argPos := 1

	if filter.ModelVersion != "" {
		whereClause = fmt.Sprintf("model_version = $%d", argPos)
		args = append(args, filter.ModelVersion)
		argPos++
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM local_update WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count local updates: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, model_version, local_accuracy, parameter_count, received_at
		FROM local_update
		WHERE %s
		ORDER BY received_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list local updates: %w", err)
	}
	defer rows.Close()

	updates := []*domain.LocalUpdate{}
	for rows.Next() {
		var u domain.LocalUpdate
		if err := rows.Scan(&u.ID, &u.ModelVersion, &u.LocalAccuracy, &u.ParameterCount, &u.ReceivedAt); err != nil {
			return nil, 0, fmt.Errorf("scan local_update: %w", err)
		}
		updates = append(updates, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate local updates: %w", err)
	}

	return updates, total, nil
}
