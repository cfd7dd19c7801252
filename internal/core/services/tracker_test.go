package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/learning"
	"fedclassroom/internal/testutil"
)

type trackerMocks struct {
	dataset  *testutil.MockLocalDataset
	reporter *testutil.MockActivityReporter
	client   *testutil.MockFederationClient
}

func newTrackerService(opts TrackerOptions) (*trackerMocks, *TrackerService) {
	m := &trackerMocks{
		dataset:  new(testutil.MockLocalDataset),
		reporter: new(testutil.MockActivityReporter),
		client:   new(testutil.MockFederationClient),
	}
	trainer := NewLocalTrainingService(m.client, learning.TrainOptions{Epochs: 2})
	return m, NewTrackerService(opts, m.dataset, m.reporter, trainer)
}

func TestTrackerService_Record(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4, MinDuration: 15 * time.Second, Report: true})

	m.reporter.On("ReportActivity", mock.Anything, mock.AnythingOfType("*domain.Activity")).Return(nil)
	m.dataset.On("Append", mock.Anything, mock.AnythingOfType("*domain.Activity")).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(1, nil)

	result, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 60})
	require.NoError(t, err)
	assert.True(t, result.Reported)
	assert.Equal(t, int64(4), result.Activity.UserID)
	assert.Equal(t, 1, result.DatasetSize)
	assert.Nil(t, result.Round)
	m.client.AssertNotCalled(t, "FetchGlobalModel", mock.Anything)
}

func TestTrackerService_Record_TooShort(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4, MinDuration: 15 * time.Second, Report: true})

	_, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 15})
	assert.ErrorIs(t, err, domain.ErrActivityTooShort)
	m.reporter.AssertNotCalled(t, "ReportActivity", mock.Anything, mock.Anything)
	m.dataset.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestTrackerService_Record_ReportFailureKeepsLocalData(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4, Report: true})

	m.reporter.On("ReportActivity", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	m.dataset.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(1, nil)

	result, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 60})
	require.NoError(t, err)
	assert.False(t, result.Reported)
	m.dataset.AssertCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestTrackerService_Record_ReportingDisabled(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4})

	m.dataset.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(1, nil)

	_, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 60})
	require.NoError(t, err)
	m.reporter.AssertNotCalled(t, "ReportActivity", mock.Anything, mock.Anything)
}

func TestTrackerService_Record_TriggersTraining(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4, TrainEvery: 2, MinSamples: 2})

	stored := []*domain.Activity{
		{UserID: 4, AppName: "code.exe", DurationSeconds: 600},
		{UserID: 4, AppName: "netflix", DurationSeconds: 900},
	}
	m.dataset.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(1, nil).Once()
	m.dataset.On("Count", mock.Anything).Return(2, nil).Once()
	m.dataset.On("All", mock.Anything).Return(stored, nil)
	m.client.On("FetchGlobalModel", mock.Anything).Return(testGlobalModel(), nil)
	m.client.On("SubmitLocalUpdate", mock.Anything, mock.Anything).Return(nil)

	first, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 600})
	require.NoError(t, err)
	assert.Nil(t, first.Round)

	second, err := svc.Record(context.Background(), &domain.Activity{AppName: "netflix", DurationSeconds: 900})
	require.NoError(t, err)
	require.NotNil(t, second.Round)
	assert.NoError(t, second.TrainErr)
	assert.Equal(t, 2, second.Round.Samples)
	m.client.AssertNumberOfCalls(t, "SubmitLocalUpdate", 1)
}

func TestTrackerService_Record_NotEnoughSamples(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4, TrainEvery: 1, MinSamples: 5})

	m.dataset.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(3, nil)

	result, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 60})
	require.NoError(t, err)
	assert.Nil(t, result.Round)
	m.dataset.AssertNotCalled(t, "All", mock.Anything)
}

func TestTrackerService_Record_TrainingFailureIsReported(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4, TrainEvery: 1, MinSamples: 1})

	m.dataset.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(1, nil)
	m.dataset.On("All", mock.Anything).Return([]*domain.Activity{{UserID: 4, AppName: "code", DurationSeconds: 60}}, nil)
	m.client.On("FetchGlobalModel", mock.Anything).Return(nil, domain.ErrGlobalModelUnavailable)

	result, err := svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 60})
	require.NoError(t, err)
	assert.ErrorIs(t, result.TrainErr, domain.ErrGlobalModelUnavailable)
}

func TestTrackerService_TrainNow_EmptyDataset(t *testing.T) {
	m, svc := newTrackerService(TrackerOptions{UserID: 4})
	m.dataset.On("All", mock.Anything).Return([]*domain.Activity{}, nil)

	_, err := svc.TrainNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoLocalData)
}

func TestSessionTracker(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	st := NewSessionTracker(9, DefaultMinSessionDuration)

	assert.Nil(t, st.Observe(FocusEvent{AppName: "code.exe", WindowTitle: "main.go", At: start}))
	// same window keeps the session open
	assert.Nil(t, st.Observe(FocusEvent{AppName: "code.exe", WindowTitle: "main.go", At: start.Add(30 * time.Second)}))

	done := st.Observe(FocusEvent{AppName: "chrome.exe", WindowTitle: "docs", At: start.Add(90 * time.Second)})
	require.NotNil(t, done)
	assert.Equal(t, int64(9), done.UserID)
	assert.Equal(t, "code.exe", done.AppName)
	assert.Equal(t, "main.go", done.WindowTitle)
	assert.Equal(t, 90, done.DurationSeconds)
	assert.Equal(t, start, done.TimestampStart)

	// a 10 second visit is dropped
	assert.Nil(t, st.Observe(FocusEvent{AppName: "slack.exe", At: start.Add(100 * time.Second)}))

	last := st.Flush(start.Add(200 * time.Second))
	require.NotNil(t, last)
	assert.Equal(t, "slack.exe", last.AppName)
	assert.Equal(t, 100, last.DurationSeconds)

	assert.Nil(t, st.Flush(start.Add(300*time.Second)))
}

func TestSessionTracker_ExactlyMinimumIsDropped(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	st := NewSessionTracker(1, 15*time.Second)

	st.Observe(FocusEvent{AppName: "a", At: start})
	assert.Nil(t, st.Observe(FocusEvent{AppName: "b", At: start.Add(15 * time.Second)}))
}

func TestTrackerService_Record_Concurrent(t *testing.T) {
	const workers = 40
	m, svc := newTrackerService(TrackerOptions{UserID: 4, TrainEvery: 5, MinSamples: 3})

	m.dataset.On("Append", mock.Anything, mock.Anything).Return(nil)
	m.dataset.On("Count", mock.Anything).Return(20, nil)
	m.dataset.On("All", mock.Anything).Return([]*domain.Activity{
		{UserID: 4, AppName: "code.exe", DurationSeconds: 600},
		{UserID: 4, AppName: "netflix", DurationSeconds: 900},
		{UserID: 4, AppName: "chrome.exe", DurationSeconds: 60},
	}, nil)
	m.client.On("FetchGlobalModel", mock.Anything).Return(testGlobalModel(), nil)
	m.client.On("SubmitLocalUpdate", mock.Anything, mock.Anything).Return(nil)

	results := make([]*RecordResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Record(context.Background(), &domain.Activity{AppName: "code.exe", DurationSeconds: 60})
		}(i)
	}
	wg.Wait()

	rounds := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.NoError(t, results[i].TrainErr)
		if results[i].Round != nil {
			rounds++
		}
	}

	// 40 records with TrainEvery 5 make 8 rounds due; overlapping ones are skipped
	assert.GreaterOrEqual(t, rounds, 1)
	assert.LessOrEqual(t, rounds, workers/5)
	m.dataset.AssertNumberOfCalls(t, "Append", workers)
	m.client.AssertNumberOfCalls(t, "SubmitLocalUpdate", rounds)
}
