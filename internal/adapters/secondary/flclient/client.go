package flclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/config"
	"fedclassroom/internal/core/domain"
	ports "fedclassroom/internal/core/ports/output"
)

const (
	globalModelPath   = "/fl/global_model"
	trainLocalPath    = "/fl/train_local"
	trackActivityPath = "/track_activity"

	// error bodies are only quoted in messages, never parsed
	maxErrorBody = 512
	// tracker payloads keep a shorter window title than the server stores
	reportTitleLen = 100
)

// Client talks to the federation server. It implements both
// ports.FederationClient and ports.ActivityReporter.
type Client struct {
	baseURL string
	client  *http.Client
}

var (
	_ ports.FederationClient = (*Client)(nil)
	_ ports.ActivityReporter = (*Client)(nil)
)

func NewClient(cfg *config.FederationConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type globalModelResponse struct {
	ModelState   domain.ModelState `json:"model_state"`
	Version      string            `json:"version"`
	Architecture string            `json:"architecture"`
}

func (c *Client) FetchGlobalModel(ctx context.Context) (*domain.GlobalModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+globalModelPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create global model request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGlobalModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", domain.ErrGlobalModelUnavailable, statusError(resp))
	}

	var body globalModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGlobalModel, err)
	}
	if len(body.ModelState) == 0 {
		return nil, fmt.Errorf("%w: missing model_state", domain.ErrMalformedGlobalModel)
	}

	log.WithFields(log.Fields{
		"version":    body.Version,
		"parameters": body.ModelState.ParameterCount(),
	}).Debug("fetched global model")

	return &domain.GlobalModel{
		Version:      body.Version,
		Architecture: body.Architecture,
		State:        body.ModelState,
	}, nil
}

func (c *Client) SubmitLocalUpdate(ctx context.Context, update *ports.LocalUpdateRequest) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal local update: %w", err)
	}

	resp, err := c.postJSON(ctx, trainLocalPath, payload)
	if err != nil {
		return fmt.Errorf("%w: submit local update: %w", domain.ErrUpdateRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", domain.ErrUpdateRejected, statusError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type activityReport struct {
	UserID          int64  `json:"user_id"`
	AppName         string `json:"app_name"`
	WindowTitle     string `json:"window_title"`
	DurationSeconds int    `json:"duration_seconds"`
	TimestampStart  string `json:"timestamp_start,omitempty"`
	TimestampEnd    string `json:"timestamp_end,omitempty"`
}

func (c *Client) ReportActivity(ctx context.Context, activity *domain.Activity) error {
	title := activity.WindowTitle
	if r := []rune(title); len(r) > reportTitleLen {
		title = string(r[:reportTitleLen])
	}

	payload, err := json.Marshal(activityReport{
		UserID:          activity.UserID,
		AppName:         activity.AppName,
		WindowTitle:     title,
		DurationSeconds: activity.DurationSeconds,
		TimestampStart:  formatTime(activity.TimestampStart),
		TimestampEnd:    formatTime(activity.TimestampEnd),
	})
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	resp, err := c.postJSON(ctx, trackActivityPath, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrActivityReportFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %s", domain.ErrActivityReportFailed, statusError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	log.WithFields(log.Fields{
		"method": http.MethodPost,
		"url":    req.URL.String(),
		"bytes":  len(payload),
	}).Debug("sending request to federation server")

	return c.client.Do(req)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func statusError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, msg)
}
