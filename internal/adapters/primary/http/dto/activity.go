package dto

import (
	"fmt"
	"time"

	"fedclassroom/internal/core/domain"
)

// TrackActivityRequest is the body of POST /track_activity.
// Timestamps accept RFC 3339 or naive ISO 8601, which is read as UTC.
type TrackActivityRequest struct {
	UserID          int64    `json:"user_id" binding:"required"`
	AppName         string   `json:"app_name" binding:"required"`
	WindowTitle     string   `json:"window_title"`
	DurationSeconds int      `json:"duration_seconds"`
	FLScore         *float64 `json:"fl_score"`
	TimestampStart  string   `json:"timestamp_start"`
	TimestampEnd    string   `json:"timestamp_end"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %q is not an ISO 8601 timestamp", domain.ErrInvalidTimeRange, field, value)
}

// ToDomain converts the request, defaulting fl_score when it was omitted.
func (r TrackActivityRequest) ToDomain() (*domain.Activity, error) {
	start, err := parseTimestamp("timestamp_start", r.TimestampStart)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("timestamp_end", r.TimestampEnd)
	if err != nil {
		return nil, err
	}

	score := domain.DefaultFLScore
	if r.FLScore != nil {
		score = *r.FLScore
	}

	return &domain.Activity{
		UserID:          r.UserID,
		AppName:         r.AppName,
		WindowTitle:     r.WindowTitle,
		DurationSeconds: r.DurationSeconds,
		FLScore:         score,
		TimestampStart:  start,
		TimestampEnd:    end,
	}, nil
}

type ListActivitiesResponse struct {
	Items      []*domain.Activity `json:"items"`
	Total      int                `json:"total"`
	PageSize   int                `json:"page_size"`
	NextOffset int                `json:"next_offset"`
}
