// store_test.go - Tests for storage layer
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/models"
)

func createTestStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func testDocument() (*models.Document, *models.Report) {
	doc := models.NewDocument("")
	doc.Children = append(doc.Children,
		models.NewTagEntry("Counter1", models.Address{Kind: models.KindRegister, Number: 70}, 69))
	report := models.NewReport()
	report.Tags = 1
	report.Drops = append(report.Drops, models.Drop{Line: 3, Content: "X0", Reason: models.DropAddressMismatch})
	return doc, report
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "conversions")

		if _, err := NewLocalStore(dataDir); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(dataDir); os.IsNotExist(err) {
			t.Error("Expected data directory to be created")
		}
	})
}

func TestLocalStore_SaveGetOpen(t *testing.T) {
	store := createTestStore(t)
	doc, report := testDocument()

	info, err := store.Save("EXPORT.txt", export.NewYAMLEncoder(), doc, report)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if info.ID == "" {
		t.Error("Expected ID to be generated")
	}
	if info.Format != "yaml" || info.ContentType != "application/yaml" {
		t.Errorf("Unexpected format metadata: %s %s", info.Format, info.ContentType)
	}
	if info.TagCount != 1 || info.DropCount != 1 {
		t.Errorf("Expected 1 tag and 1 drop, got %d and %d", info.TagCount, info.DropCount)
	}

	got, err := store.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "EXPORT.txt" {
		t.Errorf("Expected name EXPORT.txt, got %s", got.Name)
	}

	rc, err := store.Open(info.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if int64(len(data)) != info.Size {
		t.Errorf("Expected %d bytes, got %d", info.Size, len(data))
	}
}

type failingEncoder struct{ *export.YAMLEncoder }

func (failingEncoder) Encode(w io.Writer, doc *models.Document) error {
	w.Write([]byte("partial"))
	return errors.New("encode failed")
}

func TestLocalStore_SaveFailureLeavesNoFile(t *testing.T) {
	store := createTestStore(t)
	doc, report := testDocument()

	if _, err := store.Save("EXPORT.txt", failingEncoder{export.NewYAMLEncoder()}, doc, report); err == nil {
		t.Fatal("Expected error from failing encoder")
	}

	entries, err := os.ReadDir(store.dataDir)
	if err != nil {
		t.Fatalf("Failed to read data directory: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty data directory, found %d entries", len(entries))
	}

	list, _ := store.List(0)
	if len(list) != 0 {
		t.Errorf("Expected no stored conversions, got %d", len(list))
	}
}

func TestLocalStore_NotFound(t *testing.T) {
	store := createTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Get, got %v", err)
	}
	if _, err := store.Open("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Open, got %v", err)
	}
	if err := store.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound from Delete, got %v", err)
	}
}

func TestLocalStore_ListAndDelete(t *testing.T) {
	store := createTestStore(t)
	doc, report := testDocument()

	var ids []string
	for i := 0; i < 3; i++ {
		info, err := store.Save("export.txt", export.NewMsgpackEncoder(), doc, report)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, info.ID)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(list))
	}
	if list[0].ID != ids[2] {
		t.Errorf("Expected newest conversion first")
	}

	if err := store.Delete(ids[0]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.dataDir, ids[0])); !os.IsNotExist(err) {
		t.Error("Expected stored file to be removed")
	}

	list, _ = store.List(0)
	if len(list) != 2 {
		t.Errorf("Expected 2 remaining items, got %d", len(list))
	}
}
