package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/learning"
	"fedclassroom/internal/core/ports/output"
)

// RoundResult describes one completed fetch-train-upload round.
type RoundResult struct {
	ModelVersion   string        `json:"model_version"`
	Samples        int           `json:"samples"`
	Epochs         int           `json:"epochs"`
	Losses         []float64     `json:"losses"`
	FinalLoss      float64       `json:"final_loss"`
	LocalAccuracy  float64       `json:"local_accuracy"`
	ParameterCount int           `json:"parameter_count"`
	Duration       time.Duration `json:"duration"`
}

// LocalTrainingService runs the client side of a federated round: fetch the
// global model, fine-tune it on local samples, upload only the weights.
type LocalTrainingService struct {
	client ports.FederationClient
	opts   learning.TrainOptions
}

func NewLocalTrainingService(client ports.FederationClient, opts learning.TrainOptions) *LocalTrainingService {
	if opts.Epochs <= 0 {
		opts.Epochs = learning.DefaultEpochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = learning.DefaultLearningRate
	}
	return &LocalTrainingService{client: client, opts: opts}
}

// TrainLocalModel performs one round over dataset. The dataset never leaves
// this function; the upload carries model_state and local_accuracy only.
func (s *LocalTrainingService) TrainLocalModel(ctx context.Context, dataset []domain.Sample) (*RoundResult, error) {
	if len(dataset) == 0 {
		return nil, domain.ErrNoLocalData
	}
	start := time.Now()

	global, err := s.client.FetchGlobalModel(ctx)
	if err != nil {
		return nil, err
	}

	net, err := learning.NewProductivityNetFromState(global.State)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGlobalModel, err)
	}

	losses, err := net.Train(dataset, s.opts)
	if err != nil {
		return nil, fmt.Errorf("train local model: %w", err)
	}
	accuracy := net.Accuracy(dataset)
	finalLoss := net.Loss(dataset)
	state := net.State()

	if err := s.client.SubmitLocalUpdate(ctx, &ports.LocalUpdateRequest{
		ModelState:    state,
		LocalAccuracy: accuracy,
	}); err != nil {
		return nil, err
	}

	result := &RoundResult{
		ModelVersion:   global.Version,
		Samples:        len(dataset),
		Epochs:         s.opts.Epochs,
		Losses:         losses,
		FinalLoss:      finalLoss,
		LocalAccuracy:  accuracy,
		ParameterCount: state.ParameterCount(),
		Duration:       time.Since(start),
	}

	log.WithFields(log.Fields{
		"model_version":  result.ModelVersion,
		"samples":        result.Samples,
		"epochs":         result.Epochs,
		"initial_loss":   losses[0],
		"final_loss":     finalLoss,
		"local_accuracy": accuracy,
	}).Info("local training round completed")

	return result, nil
}
