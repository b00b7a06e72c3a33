package parser

import (
	"math"

	"github.com/plc-visualizer/plc2yaml/internal/models"
)

// MapperOptions controls how records become tags.
type MapperOptions struct {
	// RootName is the name of the root folder.
	RootName string
	// CoilOffsetCorrection applies the register-pair decrement to coils too.
	CoilOffsetCorrection bool
	// RangeCheck drops records whose corrected offset does not fit UInt16.
	RangeCheck bool
}

// DefaultMapperOptions returns the Tags root with coil offsets corrected.
func DefaultMapperOptions() MapperOptions {
	return MapperOptions{
		RootName:             models.DefaultRootName,
		CoilOffsetCorrection: true,
	}
}

// Mapper turns raw records into the tag document.
type Mapper struct {
	opts MapperOptions
}

func NewMapper(opts MapperOptions) *Mapper {
	if opts.RootName == "" {
		opts.RootName = models.DefaultRootName
	}
	return &Mapper{opts: opts}
}

// Map converts records in order. Records that are not Modbus elements are
// returned as drops, as are out-of-range offsets when RangeCheck is set.
func (m *Mapper) Map(records []models.RawRecord) (*models.Document, []models.Drop) {
	doc := models.NewDocument(m.opts.RootName)
	drops := make([]models.Drop, 0)

	for _, rec := range records {
		tag, reason, ok := m.MapRecord(rec)
		if !ok {
			drops = append(drops, models.Drop{
				Line:    rec.Line,
				Content: rec.SourceElement,
				Reason:  reason,
			})
			continue
		}
		doc.Children = append(doc.Children, tag)
	}

	return doc, drops
}

// MapRecord converts a single record.
func (m *Mapper) MapRecord(rec models.RawRecord) (models.TagEntry, models.DropReason, bool) {
	addr, ok := ParseAddress(rec.SourceElement)
	if !ok {
		return models.TagEntry{}, models.DropAddressMismatch, false
	}

	offset := addr.Offset(m.opts.CoilOffsetCorrection)
	if m.opts.RangeCheck && (offset < 0 || offset > math.MaxUint16) {
		return models.TagEntry{}, models.DropOffsetRange, false
	}

	return models.NewTagEntry(rec.Nickname, addr, offset), "", true
}
