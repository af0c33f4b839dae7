package model

import (
	"time"
	"unicode/utf8"
)

// PreviewLength is the number of characters kept from a note's text in
// its submission record.
const PreviewLength = 50

// SubmissionRecord is one entry of the local submission history log.
type SubmissionRecord struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Preview   string    `json:"preview" db:"preview"`
	Success   bool      `json:"success" db:"success"`
}

// Preview returns the first PreviewLength characters of text.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength])
}
