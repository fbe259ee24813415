package models

import "time"

// GroupMessage is a message in the global group channel, visible to all
// authenticated users. Text and code are independently optional; a
// code-only message keeps Text as NULL.
type GroupMessage struct {
	ID           int       `db:"id" json:"id"`
	SenderID     int       `db:"sender_id" json:"sender_id"`
	Text         *string   `db:"text" json:"text"`
	CodeContent  *string   `db:"code_content" json:"code_content"`
	CodeLanguage *string   `db:"code_language" json:"code_language"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GroupEvent is emitted over the group websocket room.
type GroupEvent struct {
	Type      string        `json:"type"`
	Message   *GroupMessage `json:"message,omitempty"`
	MessageID int           `json:"message_id,omitempty"`
}
