package models

import "time"

// Snippet is a saved piece of code, visible only to its owner.
// LastOutput caches the output of the most recent run, if any.
type Snippet struct {
	ID         int       `db:"id" json:"id"`
	OwnerID    int       `db:"owner_id" json:"owner_id"`
	Title      string    `db:"title" json:"title"`
	Code       string    `db:"code" json:"code"`
	LastOutput *string   `db:"last_output" json:"last_output"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
