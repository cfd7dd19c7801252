package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/ports/output"
)

const (
	DefaultMinSessionDuration = 15 * time.Second
	DefaultTrainEvery         = 10
	DefaultMinSamples         = 5
)

type TrackerOptions struct {
	UserID int64
	// MinDuration drops sessions that are not strictly longer than it.
	MinDuration time.Duration
	// TrainEvery starts a round after every N recorded activities.
	TrainEvery int
	// MinSamples is the dataset size required before a round may start.
	MinSamples int
	// Report forwards activities to the classroom dashboard.
	Report bool
}

// RecordResult reports what happened to a recorded activity.
type RecordResult struct {
	Activity    *domain.Activity
	Reported    bool
	DatasetSize int
	Round       *RoundResult
	TrainErr    error
}

// TrackerService collects finished sessions into the local dataset and
// periodically runs a local training round on it.
type TrackerService struct {
	opts     TrackerOptions
	dataset  ports.LocalDatasetRepository
	reporter ports.ActivityReporter
	trainer  *LocalTrainingService

	mu       sync.Mutex
	recorded int
	training atomic.Bool
}

// NewTrackerService wires the tracker. reporter may be nil when reporting is off.
func NewTrackerService(opts TrackerOptions, dataset ports.LocalDatasetRepository, reporter ports.ActivityReporter, trainer *LocalTrainingService) *TrackerService {
	if opts.TrainEvery <= 0 {
		opts.TrainEvery = DefaultTrainEvery
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = DefaultMinSamples
	}
	if opts.MinDuration < 0 {
		opts.MinDuration = 0
	}
	return &TrackerService{
		opts:     opts,
		dataset:  dataset,
		reporter: reporter,
		trainer:  trainer,
	}
}

func (s *TrackerService) Record(ctx context.Context, activity *domain.Activity) (*RecordResult, error) {
	if activity.UserID == 0 {
		activity.UserID = s.opts.UserID
	}
	if err := activity.Validate(); err != nil {
		return nil, err
	}
	minSecs := int(s.opts.MinDuration / time.Second)
	if minSecs > 0 && activity.DurationSeconds <= minSecs {
		return nil, domain.ErrActivityTooShort
	}

	result := &RecordResult{Activity: activity}

	if s.opts.Report && s.reporter != nil {
		if err := s.reporter.ReportActivity(ctx, activity); err != nil {
			log.WithError(err).WithField("app_name", activity.AppName).Warn("activity report failed, keeping it locally")
		} else {
			result.Reported = true
		}
	}

	if err := s.dataset.Append(ctx, activity); err != nil {
		return nil, fmt.Errorf("append to local dataset: %w", err)
	}
	size, err := s.dataset.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count local dataset: %w", err)
	}
	result.DatasetSize = size

	s.mu.Lock()
	s.recorded++
	due := s.recorded%s.opts.TrainEvery == 0 && size >= s.opts.MinSamples
	s.mu.Unlock()

	if !due {
		return result, nil
	}

	if !s.training.CompareAndSwap(false, true) {
		log.Debug("local training already running, skipping round")
		return result, nil
	}
	defer s.training.Store(false)

	log.WithField("samples", size).Info("starting local training round")
	round, err := s.trainAll(ctx)
	if err != nil {
		log.WithError(err).Error("local training round failed")
		result.TrainErr = err
		return result, nil
	}
	result.Round = round
	return result, nil
}

// TrainNow runs a round on the whole local dataset immediately.
func (s *TrackerService) TrainNow(ctx context.Context) (*RoundResult, error) {
	if !s.training.CompareAndSwap(false, true) {
		return nil, domain.ErrTrainingInProgress
	}
	defer s.training.Store(false)
	return s.trainAll(ctx)
}

func (s *TrackerService) trainAll(ctx context.Context) (*RoundResult, error) {
	activities, err := s.dataset.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local dataset: %w", err)
	}
	samples := make([]domain.Sample, 0, len(activities))
	for _, a := range activities {
		samples = append(samples, domain.SampleFromActivity(a))
	}
	return s.trainer.TrainLocalModel(ctx, samples)
}

// FocusEvent is one observation of the foreground window.
type FocusEvent struct {
	AppName     string    `json:"app_name"`
	WindowTitle string    `json:"window_title"`
	At          time.Time `json:"timestamp"`
}

// SessionTracker turns a stream of foreground-window observations into
// finished activities. A session ends when the app or window title changes.
type SessionTracker struct {
	userID      int64
	minDuration time.Duration

	current *FocusEvent
}

func NewSessionTracker(userID int64, minDuration time.Duration) *SessionTracker {
	return &SessionTracker{userID: userID, minDuration: minDuration}
}

// Observe records a foreground observation and returns the session it closed,
// if that session lasted longer than the minimum duration.
func (t *SessionTracker) Observe(ev FocusEvent) *domain.Activity {
	if t.current != nil && t.current.AppName == ev.AppName && t.current.WindowTitle == ev.WindowTitle {
		return nil
	}
	finished := t.Flush(ev.At)
	t.current = &ev
	return finished
}

// Flush closes the running session at the given time.
func (t *SessionTracker) Flush(at time.Time) *domain.Activity {
	if t.current == nil {
		return nil
	}
	cur := t.current
	t.current = nil

	secs := int(at.Sub(cur.At) / time.Second)
	if secs <= int(t.minDuration/time.Second) {
		return nil
	}
	return &domain.Activity{
		UserID:          t.userID,
		AppName:         cur.AppName,
		WindowTitle:     cur.WindowTitle,
		DurationSeconds: secs,
		FLScore:         domain.DefaultFLScore,
		TimestampStart:  cur.At,
		TimestampEnd:    at,
	}
}
