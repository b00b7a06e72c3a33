// Package export renders tag documents into the formats the runtime imports.
package export

import (
	"io"

	"github.com/plc-visualizer/plc2yaml/internal/models"
)

// Encoder defines the interface for document encoders.
type Encoder interface {
	// Name returns the unique name of the format.
	Name() string
	// Extension returns the default file extension, including the dot.
	Extension() string
	// ContentType returns the MIME type used when serving the document.
	ContentType() string
	// Encode writes the document to w.
	Encode(w io.Writer, doc *models.Document) error
}
