package flclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedclassroom/internal/config"
	"fedclassroom/internal/core/domain"
	ports "fedclassroom/internal/core/ports/output"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.FederationConfig{ServerURL: srv.URL + "/"})
}

func testState() domain.ModelState {
	return domain.ModelState{
		"fc1.weight": {Shape: []int{1, 2}, Data: []float64{0.1, -0.2}},
		"fc1.bias":   {Shape: []int{1}, Data: []float64{0}},
	}
}

func TestClient_FetchGlobalModel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/fl/global_model", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model_state":  testState(),
			"version":      "v1",
			"architecture": domain.ArchitectureProductivityNet,
		})
	})

	model, err := c.FetchGlobalModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", model.Version)
	assert.Equal(t, testState(), model.State)
}

func TestClient_FetchGlobalModel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			want: domain.ErrGlobalModelUnavailable,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "{not json")
			},
			want: domain.ErrMalformedGlobalModel,
		},
		{
			name: "missing model_state",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"version":"v1"}`)
			},
			want: domain.ErrMalformedGlobalModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.FetchGlobalModel(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_FetchGlobalModel_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(&config.FederationConfig{ServerURL: url})
	_, err := c.FetchGlobalModel(context.Background())
	assert.ErrorIs(t, err, domain.ErrGlobalModelUnavailable)
}

func TestClient_FetchGlobalModel_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchGlobalModel(ctx)
	assert.ErrorIs(t, err, domain.ErrGlobalModelUnavailable)
}

func TestClient_SubmitLocalUpdate_OnlyWeightsAndAccuracy(t *testing.T) {
	var body map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/fl/train_local", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"status":"received"}`)
	})

	err := c.SubmitLocalUpdate(context.Background(), &ports.LocalUpdateRequest{
		ModelState:    testState(),
		LocalAccuracy: 0.75,
	})
	require.NoError(t, err)

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"model_state", "local_accuracy"}, keys)
	assert.JSONEq(t, "0.75", string(body["local_accuracy"]))
}

func TestClient_SubmitLocalUpdate_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"shape mismatch"}`, http.StatusBadRequest)
	})

	err := c.SubmitLocalUpdate(context.Background(), &ports.LocalUpdateRequest{ModelState: testState()})
	assert.ErrorIs(t, err, domain.ErrUpdateRejected)
	assert.Contains(t, err.Error(), "shape mismatch")
}

func TestClient_SubmitLocalUpdate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(&config.FederationConfig{ServerURL: url})
	err := c.SubmitLocalUpdate(context.Background(), &ports.LocalUpdateRequest{ModelState: testState()})
	assert.ErrorIs(t, err, domain.ErrUpdateRejected)
}

func TestClient_SubmitLocalUpdate_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.SubmitLocalUpdate(ctx, &ports.LocalUpdateRequest{ModelState: testState()})
	assert.ErrorIs(t, err, domain.ErrUpdateRejected)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ReportActivity(t *testing.T) {
	var got activityReport
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track_activity", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"status":"tracked"}`)
	})

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'x'
	}
	err := c.ReportActivity(context.Background(), &domain.Activity{
		UserID:          3,
		AppName:         "code.exe",
		WindowTitle:     string(long),
		DurationSeconds: 90,
		TimestampStart:  start,
		TimestampEnd:    start.Add(90 * time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.UserID)
	assert.Equal(t, "code.exe", got.AppName)
	assert.Len(t, got.WindowTitle, reportTitleLen)
	assert.Equal(t, "2026-03-02T09:00:00Z", got.TimestampStart)
}

func TestClient_ReportActivity_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.ReportActivity(context.Background(), &domain.Activity{UserID: 1, AppName: "code"})
	assert.ErrorIs(t, err, domain.ErrActivityReportFailed)
}
