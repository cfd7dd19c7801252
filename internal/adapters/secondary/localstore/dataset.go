package localstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/core/domain"
	ports "fedclassroom/internal/core/ports/output"
)

// Dataset is the device-local activity history, one JSON object per line.
// It never leaves the machine.
type Dataset struct {
	path string

	mu    sync.Mutex
	count int
	// count is only trusted after the file has been scanned once
	loaded bool
}

var _ ports.LocalDatasetRepository = (*Dataset)(nil)

func NewDataset(path string) *Dataset {
	return &Dataset{path: path}
}

func (d *Dataset) Append(ctx context.Context, activity *domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureCount(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	d.count++
	return nil
}

// All reads the whole dataset. Lines that fail to decode are skipped.
func (d *Dataset) All(ctx context.Context) ([]*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	activities, err := d.read()
	if err != nil {
		return nil, err
	}
	d.count = len(activities)
	d.loaded = true
	return activities, nil
}

func (d *Dataset) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureCount(); err != nil {
		return 0, err
	}
	return d.count, nil
}

func (d *Dataset) ensureCount() error {
	if d.loaded {
		return nil
	}
	activities, err := d.read()
	if err != nil {
		return err
	}
	d.count = len(activities)
	d.loaded = true
	return nil
}

func (d *Dataset) read() ([]*domain.Activity, error) {
	f, err := os.Open(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*domain.Activity{}, nil
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	activities := []*domain.Activity{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var a domain.Activity
		if err := json.Unmarshal(scanner.Bytes(), &a); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"path": d.path,
				"line": lineNo,
			}).Warn("skipping unreadable dataset line")
			continue
		}
		activities = append(activities, &a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return activities, nil
}
