package models

import "time"

// Profile is the user-facing identity row, one-to-one with the
// hosted auth provider's account.
type Profile struct {
	ID          int       `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	AvatarGlyph string    `db:"avatar_glyph" json:"avatar_glyph"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
