package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/ports/output"
)

// LocalUpdateService records weights uploaded by clients. Updates are stored
// as received; combining them into a new global model happens elsewhere.
type LocalUpdateService struct {
	repo   ports.LocalUpdateRepository
	models *GlobalModelService
}

func NewLocalUpdateService(repo ports.LocalUpdateRepository, models *GlobalModelService) *LocalUpdateService {
	return &LocalUpdateService{repo: repo, models: models}
}

func (s *LocalUpdateService) Submit(ctx context.Context, state domain.ModelState, localAccuracy float64) (*domain.LocalUpdate, error) {
	if len(state) == 0 {
		return nil, domain.ErrEmptyModelState
	}
	if math.IsNaN(localAccuracy) || localAccuracy < 0 || localAccuracy > 1 {
		return nil, domain.ErrInvalidAccuracy
	}

	global, err := s.models.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !global.State.SameLayout(state) {
		return nil, domain.ErrModelShapeMismatch
	}

	update := &domain.LocalUpdate{
		ID:             uuid.New(),
		ModelVersion:   global.Version,
		State:          state,
		LocalAccuracy:  localAccuracy,
		ParameterCount: state.ParameterCount(),
		ReceivedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

func (s *LocalUpdateService) Get(ctx context.Context, id uuid.UUID) (*domain.LocalUpdate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *LocalUpdateService) List(ctx context.Context, filter ports.UpdateListFilter) ([]*domain.LocalUpdate, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}
