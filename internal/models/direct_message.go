package models

import "time"

// DirectMessage is a message between exactly two users; only the sender
// and the receiver may read it.
type DirectMessage struct {
	ID           int       `db:"id" json:"id"`
	SenderID     int       `db:"sender_id" json:"sender_id"`
	ReceiverID   int       `db:"receiver_id" json:"receiver_id"`
	Text         *string   `db:"text" json:"text"`
	CodeContent  *string   `db:"code_content" json:"code_content"`
	CodeLanguage *string   `db:"code_language" json:"code_language"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DMEvent is broadcast through direct-message websocket rooms.
type DMEvent struct {
	Type      string         `json:"type"`
	Message   *DirectMessage `json:"message,omitempty"`
	MessageID int            `json:"message_id,omitempty"`
}

// Conversation summarizes a direct-message thread for the sidebar listing.
type Conversation struct {
	PartnerID     int       `db:"partner_id" json:"partner_id"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
}
