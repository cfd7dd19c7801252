package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/services"
)

// activityRecorder is the part of TrackerService the event loop needs.
type activityRecorder interface {
	Record(ctx context.Context, activity *domain.Activity) (*services.RecordResult, error)
}

// flushTimeout bounds recording of the open session after cancellation.
const flushTimeout = 10 * time.Second

// runTrack feeds focus events from r into the session tracker until EOF or
// cancellation, then closes the last session at the last event time.
func runTrack(ctx context.Context, r io.Reader, sessions *services.SessionTracker, rec activityRecorder) error {
	lines, scanErr := scanLines(ctx, r)
	var last time.Time
	recorded := 0

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return err
				}
				break loop
			}
			if len(line) == 0 {
				continue
			}

			var ev services.FocusEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				log.WithError(err).Warn("skipping malformed focus event")
				continue
			}
			if ev.At.IsZero() {
				ev.At = time.Now().UTC()
			}
			last = ev.At

			if finished := sessions.Observe(ev); finished != nil && record(ctx, rec, finished) {
				recorded++
			}
		}
	}

	if !last.IsZero() {
		// the run context may already be cancelled; the open session still counts
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		defer cancel()
		if finished := sessions.Flush(last); finished != nil && record(flushCtx, rec, finished) {
			recorded++
		}
	}

	log.WithField("recorded", recorded).Info("tracking stopped")
	return nil
}

// scanLines reads r on its own goroutine so a blocked read never delays
// cancellation. scanErr receives exactly one value before lines is closed.
func scanLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				scanErr <- nil
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	return lines, scanErr
}

func record(ctx context.Context, rec activityRecorder, activity *domain.Activity) bool {
	result, err := rec.Record(ctx, activity)
	if err != nil {
		if errors.Is(err, domain.ErrActivityTooShort) {
			return false
		}
		log.WithError(err).WithField("app_name", activity.AppName).Error("record activity failed")
		return false
	}

	entry := log.WithFields(log.Fields{
		"app_name":     domain.DisplayName(activity.AppName, activity.WindowTitle),
		"duration":     activity.DurationSeconds,
		"reported":     result.Reported,
		"dataset_size": result.DatasetSize,
	})
	switch {
	case result.TrainErr != nil:
		entry.WithError(result.TrainErr).Warn("activity recorded, training round failed")
	case result.Round != nil:
		entry.WithField("local_accuracy", result.Round.LocalAccuracy).Info("activity recorded, model updated")
	default:
		entry.Info("activity recorded")
	}
	return true
}
