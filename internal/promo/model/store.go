package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const stateFileName = "model.json"

// Store persists trained model state. Load returning (nil, nil) means no
// model has been trained yet.
type Store interface {
	Save(ctx context.Context, state *TrainedModelState) error
	Load(ctx context.Context) (*TrainedModelState, error)
}

// FileStore keeps the model state as a JSON document on disk
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, stateFileName)
}

func (s *FileStore) Save(ctx context.Context, state *TrainedModelState) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode model state: %w", err)
	}

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write model state: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("replace model state: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (*TrainedModelState, error) {
	payload, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read model state: %w", err)
	}

	var state TrainedModelState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode model state: %w", err)
	}
	return &state, nil
}

var _ Store = (*FileStore)(nil)
