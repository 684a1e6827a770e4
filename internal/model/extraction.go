package model

import "time"

// ExtractionRun records one pass of the extraction collaborator over a
// document set. The raw per-field answers are kept verbatim so a bad parse
// can be audited after the fact.
type ExtractionRun struct {
	CreatedAt time.Time         `json:"created_at"`
	Fields    map[string]string `json:"fields"`
	SessionID string            `json:"session_id"`
	Source    string            `json:"source,omitempty"`
	ID        int64             `json:"id,omitempty"`
}
