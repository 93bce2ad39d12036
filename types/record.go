// Package types provides the value types shared by every receivables record.
package types

import "time"

// Record carries the creation and modification timestamps embedded in every
// persisted record.
type Record struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord creates a Record stamped with the current UTC time.
func NewRecord() Record {
	now := time.Now().UTC()
	return Record{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates UpdatedAt to now.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// Age returns how long ago the record was created.
func (r Record) Age() time.Duration {
	return time.Since(r.CreatedAt)
}
