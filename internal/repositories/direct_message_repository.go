package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"codechat-service/internal/models"
)

// DirectMessageRepository defines interactions for one-to-one messages.
// Every query is scoped to the requesting participant, so a message is
// never readable or writable by a third user.
type DirectMessageRepository interface {
	CreateDirectMessage(ctx context.Context, senderID, receiverID int, text, codeContent, codeLanguage *string) (models.DirectMessage, error)
	ListConversation(ctx context.Context, userID, partnerID int) ([]models.DirectMessage, error)
	ListConversations(ctx context.Context, userID int) ([]models.Conversation, error)
	GetDirectMessage(ctx context.Context, messageID int, userID int) (models.DirectMessage, error)
	UpdateCodeContent(ctx context.Context, messageID int, senderID int, codeContent string) (models.DirectMessage, error)
	DeleteDirectMessage(ctx context.Context, messageID int, senderID int) error
}

// DirectMessageRepo is a sqlx implementation of DirectMessageRepository.
type DirectMessageRepo struct {
	db *sqlx.DB
}

// NewDirectMessageRepo constructs a DirectMessageRepo.
func NewDirectMessageRepo(db *sqlx.DB) *DirectMessageRepo {
	return &DirectMessageRepo{db: db}
}

// CreateDirectMessage stores a message between sender and receiver.
func (r *DirectMessageRepo) CreateDirectMessage(ctx context.Context, senderID, receiverID int, text, codeContent, codeLanguage *string) (models.DirectMessage, error) {
	if senderID == receiverID {
		return models.DirectMessage{}, errors.New("cannot message yourself")
	}
	var msg models.DirectMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO direct_messages (sender_id, receiver_id, text, code_content, code_language)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, sender_id, receiver_id, text, code_content, code_language, created_at`,
		senderID, receiverID, text, codeContent, codeLanguage).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &msg.CodeContent, &msg.CodeLanguage, &msg.CreatedAt)
	return msg, err
}

// ListConversation returns the ordered messages between two users.
func (r *DirectMessageRepo) ListConversation(ctx context.Context, userID, partnerID int) ([]models.DirectMessage, error) {
	var msgs []models.DirectMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, text, code_content, code_language, created_at
        FROM direct_messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC`, userID, partnerID)
	return msgs, err
}

// ListConversations returns the user's conversation partners, most recent first.
func (r *DirectMessageRepo) ListConversations(ctx context.Context, userID int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT
            CASE WHEN sender_id=$1 THEN receiver_id ELSE sender_id END AS partner_id,
            MAX(created_at) AS last_message_at
        FROM direct_messages
        WHERE sender_id=$1 OR receiver_id=$1
        GROUP BY partner_id
        ORDER BY last_message_at DESC`, userID)
	return convs, err
}

// GetDirectMessage fetches a message the user participates in.
func (r *DirectMessageRepo) GetDirectMessage(ctx context.Context, messageID int, userID int) (models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, sender_id, receiver_id, text, code_content, code_language, created_at
        FROM direct_messages WHERE id=$1 AND (sender_id=$2 OR receiver_id=$2)`, messageID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DirectMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateCodeContent replaces the code of a message; only the author may edit.
func (r *DirectMessageRepo) UpdateCodeContent(ctx context.Context, messageID int, senderID int, codeContent string) (models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.QueryRowxContext(ctx, `UPDATE direct_messages SET code_content=$3 WHERE id=$1 AND sender_id=$2
        RETURNING id, sender_id, receiver_id, text, code_content, code_language, created_at`, messageID, senderID, codeContent).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &msg.CodeContent, &msg.CodeLanguage, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DirectMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteDirectMessage removes a message; only the author may delete.
func (r *DirectMessageRepo) DeleteDirectMessage(ctx context.Context, messageID int, senderID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM direct_messages WHERE id=$1 AND sender_id=$2`, messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
