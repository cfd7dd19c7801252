package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/learning"
	"fedclassroom/internal/core/ports/output"
)

// GlobalModelService serves the shared model to clients.
type GlobalModelService struct {
	store ports.GlobalModelStore
	seed  int64

	mu      sync.RWMutex
	current *domain.GlobalModel
}

func NewGlobalModelService(store ports.GlobalModelStore, seed int64) *GlobalModelService {
	return &GlobalModelService{store: store, seed: seed}
}

// Init loads the stored global model, creating and saving a freshly
// initialised ProductivityNet when none exists.
func (s *GlobalModelService) Init(ctx context.Context) (*domain.GlobalModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model, err := s.store.Load(ctx)
	switch {
	case err == nil:
		if _, err := learning.NewProductivityNetFromState(model.State); err != nil {
			return nil, fmt.Errorf("%w: stored global model: %w", domain.ErrGlobalModelUnavailable, err)
		}
		s.current = model
		return model, nil
	case !errors.Is(err, domain.ErrGlobalModelNotFound):
		return nil, fmt.Errorf("%w: load global model: %w", domain.ErrGlobalModelUnavailable, err)
	}

	net := learning.NewProductivityNet(rand.New(rand.NewSource(s.seed)))
	model = &domain.GlobalModel{
		Version:      uuid.NewString(),
		Architecture: domain.ArchitectureProductivityNet,
		State:        net.State(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.store.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("save initial global model: %w", err)
	}

	log.WithFields(log.Fields{
		"version":    model.Version,
		"parameters": model.State.ParameterCount(),
	}).Info("initialised global model")

	s.current = model
	return model, nil
}

// Get returns the current global model.
func (s *GlobalModelService) Get(ctx context.Context) (*domain.GlobalModel, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current != nil {
		return current, nil
	}
	return s.Init(ctx)
}

// Publish replaces the global model with externally produced weights.
func (s *GlobalModelService) Publish(ctx context.Context, state domain.ModelState) (*domain.GlobalModel, error) {
	if _, err := learning.NewProductivityNetFromState(state); err != nil {
		return nil, err
	}

	model := &domain.GlobalModel{
		Version:      uuid.NewString(),
		Architecture: domain.ArchitectureProductivityNet,
		State:        state.Clone(),
		UpdatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, model); err != nil {
		return nil, err
	}
	s.current = model
	return model, nil
}
