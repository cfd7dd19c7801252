package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedclassroom/internal/core/domain"
)

func TestTrackActivityRequest_ToDomain(t *testing.T) {
	score := 0.0
	req := TrackActivityRequest{
		UserID:          4,
		AppName:         "code.exe",
		DurationSeconds: 60,
		FLScore:         &score,
		TimestampStart:  "2026-03-02T09:00:00.250000",
		TimestampEnd:    "2026-03-02T11:01:00+02:00",
	}

	a, err := req.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, 0.0, a.FLScore)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 250000000, time.UTC), a.TimestampStart)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC), a.TimestampEnd)
}

func TestTrackActivityRequest_ToDomain_Defaults(t *testing.T) {
	a, err := TrackActivityRequest{UserID: 1, AppName: "code"}.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFLScore, a.FLScore)
	assert.True(t, a.TimestampStart.IsZero())
	assert.True(t, a.TimestampEnd.IsZero())
}

func TestTrackActivityRequest_ToDomain_BadTimestamp(t *testing.T) {
	_, err := TrackActivityRequest{UserID: 1, AppName: "code", TimestampEnd: "03/02/2026"}.ToDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
