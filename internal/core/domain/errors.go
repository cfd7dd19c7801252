package domain

import "errors"

// ============================================================================
// Federated Learning Errors
// ============================================================================

// Not found errors
var (
	ErrGlobalModelNotFound = errors.New("global model not found")
	ErrUpdateNotFound      = errors.New("local update not found")
)

// Validation errors
var (
	ErrModelShapeMismatch = errors.New("model state does not match the model architecture")
	ErrEmptyModelState    = errors.New("model_state is required")
	ErrInvalidAccuracy    = errors.New("local_accuracy must be between 0 and 1")
	ErrNoLocalData        = errors.New("no local training data")
	ErrInvalidEpochs      = errors.New("local epochs must be > 0")
	ErrInvalidLabel       = errors.New("sample label out of range")
	ErrTrainingInProgress = errors.New("local training already running")
)

// Upstream errors (client side)
var (
	ErrGlobalModelUnavailable = errors.New("global model unavailable")
	ErrMalformedGlobalModel   = errors.New("malformed global model response")
	ErrUpdateRejected         = errors.New("local update rejected by server")
	ErrActivityReportFailed   = errors.New("activity report failed")
)

// ============================================================================
// Activity Tracking Errors
// ============================================================================

var (
	ErrInvalidUserID    = errors.New("user_id must be a positive integer")
	ErrInvalidAppName   = errors.New("app_name is required")
	ErrInvalidDuration  = errors.New("duration_seconds must be between 0 and 2147483647")
	ErrInvalidTimeRange = errors.New("timestamp_start must not be after timestamp_end")
	ErrActivityTooShort = errors.New("activity shorter than the minimum tracked duration")
)
