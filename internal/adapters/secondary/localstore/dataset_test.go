package localstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fedclassroom/internal/core/domain"
)

func TestDataset_Empty(t *testing.T) {
	ds := NewDataset(filepath.Join(t.TempDir(), "activities.jsonl"))

	n, err := ds.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := ds.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDataset_AppendAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "activities.jsonl")
	ds := NewDataset(path)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, ds.Append(context.Background(), &domain.Activity{
		UserID: 1, AppName: "code.exe", DurationSeconds: 600,
		TimestampStart: start, TimestampEnd: start.Add(10 * time.Minute),
	}))
	require.NoError(t, ds.Append(context.Background(), &domain.Activity{
		UserID: 1, AppName: "chrome.exe", WindowTitle: "YouTube", DurationSeconds: 120,
	}))

	n, err := ds.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := ds.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "code.exe", all[0].AppName)
	assert.Equal(t, start, all[0].TimestampStart)
	assert.Equal(t, "YouTube", all[1].WindowTitle)

	// a fresh handle picks up the existing file
	n, err = NewDataset(path).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDataset_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.jsonl")
	content := `{"app_name":"code.exe","duration_seconds":60}` + "\n" +
		"garbage\n" +
		"\n" +
		`{"app_name":"slack.exe","duration_seconds":30}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	all, err := NewDataset(path).All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "slack.exe", all[1].AppName)
}

func TestDataset_ConcurrentAppend(t *testing.T) {
	ds := NewDataset(filepath.Join(t.TempDir(), "activities.jsonl"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, ds.Append(context.Background(), &domain.Activity{UserID: 1, AppName: "code", DurationSeconds: 30}))
		}()
	}
	wg.Wait()

	all, err := ds.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
