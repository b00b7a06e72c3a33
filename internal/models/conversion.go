package models

import "time"

// ConversionInfo represents metadata about a stored conversion.
type ConversionInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Format      string    `json:"format"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	TagCount    int       `json:"tagCount"`
	DropCount   int       `json:"dropCount"`
	CreatedAt   time.Time `json:"createdAt"`
}
