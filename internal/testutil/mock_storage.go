// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
	"github.com/plc-visualizer/plc2yaml/internal/storage"
)

// MockStorage implements storage.Store in memory for testing
type MockStorage struct {
	items map[string]*models.ConversionInfo
	data  map[string][]byte
	mu    sync.RWMutex

	// SaveErr, when set, is returned by every Save call
	SaveErr error
}

// NewMockStorage creates a new empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		items: make(map[string]*models.ConversionInfo),
		data:  make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, enc export.Encoder, doc *models.Document, report *models.Report) (*models.ConversionInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, doc); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	info := &models.ConversionInfo{
		ID:          generateTestID(),
		Name:        name,
		Format:      enc.Name(),
		ContentType: enc.ContentType(),
		Size:        int64(buf.Len()),
		TagCount:    len(doc.Children),
		CreatedAt:   time.Now(),
	}
	if report != nil {
		info.DropCount = len(report.Drops)
	}

	m.items[info.ID] = info
	m.data[info.ID] = buf.Bytes()
	return info, nil
}

func (m *MockStorage) Get(id string) (*models.ConversionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return info, nil
}

func (m *MockStorage) List(limit int) ([]*models.ConversionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.ConversionInfo, 0, len(m.items))
	for _, info := range m.items {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Open(id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	delete(m.items, id)
	delete(m.data, id)
	return nil
}

// Count returns the number of stored conversions
func (m *MockStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// generateTestID generates a simple, sortable test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%04d", testIDCounter)
}

var _ storage.Store = (*MockStorage)(nil)
