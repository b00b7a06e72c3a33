package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plc-visualizer/plc2yaml/internal/models"
)

// WriteFile encodes doc into path. The document is written to a temporary
// file in the same directory and renamed into place, so a failed encode
// never leaves a partial output behind.
func WriteFile(path string, enc Encoder, doc *models.Document) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	if err := enc.Encode(w, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting output mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}
