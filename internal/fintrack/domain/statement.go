package domain

import "time"

// Statement describes an uploaded bank statement document.
type Statement struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	URL       string    `json:"url"`
}

// StatementSet is every statement the current user has uploaded.
type StatementSet []Statement

// HasAny reports whether at least one statement has been uploaded.
func (s StatementSet) HasAny() bool { return len(s) > 0 }
