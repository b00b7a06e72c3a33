// Package parser extracts element records from PLC export text and maps them
// to Modbus tag definitions.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/plc-visualizer/plc2yaml/internal/models"
)

// Default region markers of an element-doc export.
const (
	DefaultBeginMarker = "#BEGIN ELEMENT_DOC"
	DefaultEndMarker   = "#END"

	fieldSeparator = `","`
	maxLineSize    = 1024 * 1024
)

// ErrMarkerNotFound is returned when the begin marker never appears.
var ErrMarkerNotFound = errors.New("marker not found")

// FormatError reports an input that is not an element-doc export.
type FormatError struct {
	Marker string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %q %v", e.Marker, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Markers delimit the data region of an export.
type Markers struct {
	Begin string
	End   string
}

// DefaultMarkers returns the markers written by the PLC programming software.
func DefaultMarkers() Markers {
	return Markers{Begin: DefaultBeginMarker, End: DefaultEndMarker}
}

// Extractor finds the data region of an export and splits it into records.
type Extractor struct {
	markers Markers
}

// NewExtractor creates an extractor; empty markers fall back to the defaults.
func NewExtractor(m Markers) *Extractor {
	if m.Begin == "" {
		m.Begin = DefaultBeginMarker
	}
	if m.End == "" {
		m.End = DefaultEndMarker
	}
	return &Extractor{markers: m}
}

// Scan returns a lazy record scanner over r.
func (e *Extractor) Scan(r io.Reader) *RecordScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &RecordScanner{
		markers: e.markers,
		lines:   sc,
		drops:   make([]models.Drop, 0),
	}
}

// Extract drains the scanner. On a FormatError no records are returned.
func (e *Extractor) Extract(r io.Reader) ([]models.RawRecord, []models.Drop, error) {
	s := e.Scan(r)
	records := make([]models.RawRecord, 0)
	for s.Next() {
		records = append(records, s.Record())
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}
	return records, s.Drops(), nil
}

// RecordScanner iterates the records of one export, bufio.Scanner style.
type RecordScanner struct {
	markers Markers
	lines   *bufio.Scanner

	lineNum   int
	inRegion  bool
	done      bool
	record    models.RawRecord
	err       error
	drops     []models.Drop
	regionLen int
}

// Next advances to the next record. It returns false at the end of the data
// region or on error.
func (s *RecordScanner) Next() bool {
	if s.done {
		return false
	}
	if !s.inRegion && !s.seekBegin() {
		s.done = true
		return false
	}

	for s.lines.Scan() {
		s.lineNum++
		line := s.lines.Text()
		if strings.Contains(line, s.markers.End) {
			s.done = true
			return false
		}
		s.regionLen++

		rec, ok := models.NewRawRecord(s.lineNum, SplitFields(line))
		if !ok {
			s.drops = append(s.drops, models.Drop{
				Line:    s.lineNum,
				Content: line,
				Reason:  models.DropFieldCount,
			})
			continue
		}
		s.record = rec
		return true
	}

	s.done = true
	if err := s.lines.Err(); err != nil {
		s.err = fmt.Errorf("reading export: %w", err)
	}
	return false
}

// seekBegin skips everything up to and including the begin marker line.
func (s *RecordScanner) seekBegin() bool {
	for s.lines.Scan() {
		s.lineNum++
		line := s.lines.Bytes()
		if s.lineNum == 1 {
			line = bytes.TrimPrefix(line, []byte("\xEF\xBB\xBF"))
		}
		if bytes.Contains(line, []byte(s.markers.Begin)) {
			s.inRegion = true
			return true
		}
	}
	if err := s.lines.Err(); err != nil {
		s.err = fmt.Errorf("reading export: %w", err)
		return false
	}
	s.err = &FormatError{Marker: s.markers.Begin, Err: ErrMarkerNotFound}
	return false
}

// Record returns the record produced by the last call to Next.
func (s *RecordScanner) Record() models.RawRecord {
	return s.record
}

// Err returns the first fatal error, if any.
func (s *RecordScanner) Err() error {
	return s.err
}

// Drops returns the lines skipped so far because of their field count.
func (s *RecordScanner) Drops() []models.Drop {
	return s.drops
}

// RegionLines returns the number of data-region lines consumed so far.
func (s *RecordScanner) RegionLines() int {
	return s.regionLen
}

// SplitFields splits a data line on the quoted-comma delimiter and strips
// the remaining quote characters from each field.
func SplitFields(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), fieldSeparator)
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	return parts
}
