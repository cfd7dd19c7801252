package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fedclassroom/internal/core/domain"
	ports "fedclassroom/internal/core/ports/output"
)

// FileStore keeps the global model in a single JSON document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.GlobalModelStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (*domain.GlobalModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrGlobalModelNotFound
		}
		return nil, fmt.Errorf("read global model: %w", err)
	}

	var model domain.GlobalModel
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, fmt.Errorf("decode global model %s: %w", s.path, err)
	}
	if len(model.State) == 0 {
		return nil, fmt.Errorf("decode global model %s: %w", s.path, domain.ErrEmptyModelState)
	}
	return &model, nil
}

// Save writes to a temp file in the same directory and renames it over the
// previous model so readers never see a partial document.
func (s *FileStore) Save(ctx context.Context, model *domain.GlobalModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode global model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".global-model-*.json")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write global model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close global model: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace global model: %w", err)
	}
	return nil
}
