package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fedclassroom/internal/core/domain"
)

type ActivityListFilter struct {
	UserID int64
	Since  time.Time
	Limit  int
	Offset int
}

type UpdateListFilter struct {
	ModelVersion string
	Limit        int
	Offset       int
}

// ============================================================================
// Server-side Repositories
// ============================================================================

// ActivityRepository defines the contract for tracked activity persistence
type ActivityRepository interface {
	// Create stores the activity and sets its ID
	Create(ctx context.Context, activity *domain.Activity) error

	// List returns activities newest first, with the total matching count
	List(ctx context.Context, filter ActivityListFilter) ([]*domain.Activity, int, error)

	// StudentStats aggregates duration and count per student since the given time
	StudentStats(ctx context.Context, since time.Time) ([]domain.StudentStat, error)
}

// LocalUpdateRepository stores weights received from clients
type LocalUpdateRepository interface {
	Create(ctx context.Context, update *domain.LocalUpdate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LocalUpdate, error)
	// List returns update metadata newest first; model_state is not loaded.
	List(ctx context.Context, filter UpdateListFilter) ([]*domain.LocalUpdate, int, error)
}

// GlobalModelStore loads and saves the shared model
type GlobalModelStore interface {
	// Load returns domain.ErrGlobalModelNotFound when nothing has been saved yet
	Load(ctx context.Context) (*domain.GlobalModel, error)
	Save(ctx context.Context, model *domain.GlobalModel) error
}

// ============================================================================
// Client-side Repositories
// ============================================================================

// LocalDatasetRepository keeps the device's private activity history
type LocalDatasetRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	All(ctx context.Context) ([]*domain.Activity, error)
	Count(ctx context.Context) (int, error)
}
