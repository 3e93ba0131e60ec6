package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spacesedan/kyokan/internal/models"
)

var (
	ErrNotFound     = errors.New("result not found")
	ErrInvalidID    = errors.New("invalid result id")
	ErrResultExists = errors.New("result already stored")
)

// FileStore keeps one JSON file per analysis result under a base directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates basePath if it does not exist.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Save writes result to <id>.json. Existing files are never overwritten.
func (s *FileStore) Save(_ context.Context, result models.AnalysisResult) error {
	path, err := s.path(result.ResultID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tmp, err := s.writeTemp(data)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	// a hard link fails if the target exists, and only ever exposes a
	// complete file
	if err := os.Link(tmp, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", result.ResultID, ErrResultExists)
		}
		return fmt.Errorf("publish result file: %w", err)
	}
	return nil
}

// writeTemp writes data to a hidden temp file in the results directory. List
// never reports it since it lacks the .json suffix.
func (s *FileStore) writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp(s.basePath, ".result-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create result file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close result file: %w", err)
	}
	return f.Name(), nil
}

// Ping reports whether the results directory is still usable.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("stat results dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("results path %s is not a directory", s.basePath)
	}
	return nil
}

// List returns the stored result IDs in lexical order.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*models.AnalysisResult, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", id, err)
	}
	return &result, nil
}

func (s *FileStore) path(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, id+".json"), nil
}

// ValidateID rejects IDs that could escape the results directory or collide
// with key separators in other stores.
func ValidateID(id string) error {
	if id == "" || len(id) > 128 {
		return ErrInvalidID
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidID
		}
	}
	return nil
}
