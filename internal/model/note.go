package model

import "time"

// NoteStatus is the delivery state of a queued note.
type NoteStatus string

// Pending note status constants.
const (
	NoteStatusPending   NoteStatus = "pending"
	NoteStatusUploading NoteStatus = "uploading"
	NoteStatusFailed    NoteStatus = "failed"
)

// PendingNote is a note that could not be delivered immediately and waits
// in the local queue for the sync worker.
type PendingNote struct {
	ID   int64  `json:"id" db:"id"`
	Text string `json:"text" db:"text"`

	// Filename is derived once from the creation timestamp and reused on
	// every retry so repeated deliveries target the same remote path.
	Filename  string     `json:"filename" db:"filename"`
	Status    NoteStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
