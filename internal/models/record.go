// Package models contains domain types for the PLC tag exporter.
package models

// RawRecord is one data line of an element-doc export, split into its five
// quoted fields.
type RawRecord struct {
	Line          int    `json:"line"`
	SourceElement string `json:"sourceElement"`
	Flags         string `json:"flags"`
	Nickname      string `json:"nickname"`
	ExtraInfo     string `json:"extraInfo"`
	Description   string `json:"description"`
}

// RecordFieldCount is the number of fields a data line must carry.
const RecordFieldCount = 5

// NewRawRecord builds a record from exactly RecordFieldCount fields.
// It reports false when the field count is wrong.
func NewRawRecord(line int, fields []string) (RawRecord, bool) {
	if len(fields) != RecordFieldCount {
		return RawRecord{}, false
	}
	return RawRecord{
		Line:          line,
		SourceElement: fields[0],
		Flags:         fields[1],
		Nickname:      fields[2],
		ExtraInfo:     fields[3],
		Description:   fields[4],
	}, true
}
