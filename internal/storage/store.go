package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
)

// ErrNotFound is returned for unknown conversion IDs.
var ErrNotFound = errors.New("conversion not found")

// Store defines the interface for conversion storage.
type Store interface {
	Save(name string, enc export.Encoder, doc *models.Document, report *models.Report) (*models.ConversionInfo, error)
	Get(id string) (*models.ConversionInfo, error)
	List(limit int) ([]*models.ConversionInfo, error)
	Open(id string) (io.ReadCloser, error)
	Delete(id string) error
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu      sync.RWMutex
	dataDir string
	items   map[string]*models.ConversionInfo
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(dataDir string) (*LocalStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &LocalStore{
		dataDir: dataDir,
		items:   make(map[string]*models.ConversionInfo),
	}, nil
}

// Save encodes the document and stores it under a new ID.
func (s *LocalStore) Save(name string, enc export.Encoder, doc *models.Document, report *models.Report) (*models.ConversionInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.dataDir, id)
	if err := export.WriteFile(path, enc, doc); err != nil {
		return nil, fmt.Errorf("writing conversion: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat conversion: %w", err)
	}

	info := &models.ConversionInfo{
		ID:          id,
		Name:        name,
		Format:      enc.Name(),
		ContentType: enc.ContentType(),
		Size:        stat.Size(),
		TagCount:    len(doc.Children),
		CreatedAt:   time.Now(),
	}
	if report != nil {
		info.DropCount = len(report.Drops)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = info

	return info, nil
}

// Get retrieves conversion metadata by ID.
func (s *LocalStore) Get(id string) (*models.ConversionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return info, nil
}

// List returns the most recent conversions.
func (s *LocalStore) List(limit int) ([]*models.ConversionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.ConversionInfo, 0, len(s.items))
	for _, info := range s.items {
		list = append(list, info)
	}

	// Sort by CreatedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Open returns the stored document bytes.
func (s *LocalStore) Open(id string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.items[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	f, err := os.Open(filepath.Join(s.dataDir, id))
	if err != nil {
		return nil, fmt.Errorf("opening conversion: %w", err)
	}
	return f, nil
}

// Delete removes a conversion from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := filepath.Join(s.dataDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting conversion: %w", err)
	}

	delete(s.items, id)
	return nil
}
