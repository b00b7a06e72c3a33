package models

// DropReason names why a line or record produced no tag.
type DropReason string

const (
	DropFieldCount      DropReason = "field_count"
	DropAddressMismatch DropReason = "address_mismatch"
	DropOffsetRange     DropReason = "offset_range"
)

// Drop is a line or record filtered out of the conversion. Drops are expected
// in real exports and are reported rather than treated as errors.
type Drop struct {
	Line    int        `json:"line"`
	Content string     `json:"content"`
	Reason  DropReason `json:"reason"`
}

// Report summarizes one conversion run.
type Report struct {
	LinesScanned int    `json:"linesScanned"`
	Records      int    `json:"records"`
	Tags         int    `json:"tags"`
	Drops        []Drop `json:"drops"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Drops: make([]Drop, 0)}
}

// DropCounts returns the number of drops per reason.
func (r *Report) DropCounts() map[DropReason]int {
	counts := make(map[DropReason]int)
	for _, d := range r.Drops {
		counts[d.Reason]++
	}
	return counts
}
