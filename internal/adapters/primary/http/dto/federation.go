package dto

import (
	"time"

	"github.com/google/uuid"

	"fedclassroom/internal/core/domain"
)

// ============================================================================
// Request DTOs
// ============================================================================

// TrainLocalRequest is the upload a client sends after a local round
type TrainLocalRequest struct {
	ModelState    domain.ModelState `json:"model_state" binding:"required"`
	LocalAccuracy *float64          `json:"local_accuracy" binding:"required"`
}

// PublishGlobalModelRequest replaces the weights handed out to clients
type PublishGlobalModelRequest struct {
	ModelState domain.ModelState `json:"model_state" binding:"required"`
}

// ============================================================================
// Response DTOs
// ============================================================================

type GlobalModelResponse struct {
	ModelState   domain.ModelState `json:"model_state"`
	Version      string            `json:"version"`
	Architecture string            `json:"architecture"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type TrainLocalResponse struct {
	Status       string    `json:"status"`
	ID           uuid.UUID `json:"id"`
	ModelVersion string    `json:"model_version"`
}

// LocalUpdateResponse describes a stored update; weights are only included
// when a single update is fetched.
type LocalUpdateResponse struct {
	ID             uuid.UUID         `json:"id"`
	ModelVersion   string            `json:"model_version"`
	LocalAccuracy  float64           `json:"local_accuracy"`
	ParameterCount int               `json:"parameter_count"`
	ReceivedAt     time.Time         `json:"received_at"`
	ModelState     domain.ModelState `json:"model_state,omitempty"`
}

type ListLocalUpdatesResponse struct {
	Items      []LocalUpdateResponse `json:"items"`
	Total      int                   `json:"total"`
	PageSize   int                   `json:"page_size"`
	NextOffset int                   `json:"next_offset"`
}

// ============================================================================
// Converters
// ============================================================================

func ToGlobalModelResponse(m *domain.GlobalModel) GlobalModelResponse {
	return GlobalModelResponse{
		ModelState:   m.State,
		Version:      m.Version,
		Architecture: m.Architecture,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToLocalUpdateResponse(u *domain.LocalUpdate, withState bool) LocalUpdateResponse {
	resp := LocalUpdateResponse{
		ID:             u.ID,
		ModelVersion:   u.ModelVersion,
		LocalAccuracy:  u.LocalAccuracy,
		ParameterCount: u.ParameterCount,
		ReceivedAt:     u.ReceivedAt,
	}
	if withState {
		resp.ModelState = u.State
	}
	return resp
}
