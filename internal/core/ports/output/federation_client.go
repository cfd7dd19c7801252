package ports

import (
	"context"

	"fedclassroom/internal/core/domain"
)

// LocalUpdateRequest is the full body of an upload to the federation server.
// It carries weights and a summary metric only.
type LocalUpdateRequest struct {
	ModelState    domain.ModelState `json:"model_state"`
	LocalAccuracy float64           `json:"local_accuracy"`
}

// FederationClient defines the contract for talking to the federation server
type FederationClient interface {
	// FetchGlobalModel performs GET /fl/global_model
	FetchGlobalModel(ctx context.Context) (*domain.GlobalModel, error)

	// SubmitLocalUpdate performs POST /fl/train_local; the response body is ignored
	SubmitLocalUpdate(ctx context.Context, req *LocalUpdateRequest) error
}

// ActivityReporter sends finished activities to the classroom dashboard
type ActivityReporter interface {
	ReportActivity(ctx context.Context, activity *domain.Activity) error
}
