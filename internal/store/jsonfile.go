package store

import (
	"context"
	"fmt"
	"sync"

	"ruh-integration-pages/internal/ioformats"
	"ruh-integration-pages/internal/models"
)

// JSONFile is the connector list file itself. It is read once and the whole
// list is rewritten after every MarkPublished.
type JSONFile struct {
	path string

	mu   sync.Mutex
	list []models.Connector
}

func OpenJSONFile(path string) (*JSONFile, error) {
	list, err := ioformats.ReadConnectors(path)
	if err != nil {
		return nil, err
	}
	return &JSONFile{path: path, list: list}, nil
}

func (s *JSONFile) LoadAll(ctx context.Context) ([]models.Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Connector, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *JSONFile) MarkPublished(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.list {
		if s.list[i].Name != name {
			continue
		}
		was := s.list[i].Published
		s.list[i].Published = true
		if err := ioformats.WriteConnectorsJSON(s.path, s.list); err != nil {
			s.list[i].Published = was
			return fmt.Errorf("save connectors: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (s *JSONFile) Close() error { return nil }
