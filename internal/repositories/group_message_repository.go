package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"codechat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// GroupMessageRepository defines interactions for the global group channel.
type GroupMessageRepository interface {
	CreateGroupMessage(ctx context.Context, senderID int, text, codeContent, codeLanguage *string) (models.GroupMessage, error)
	ListGroupMessages(ctx context.Context) ([]models.GroupMessage, error)
	GetGroupMessage(ctx context.Context, messageID int) (models.GroupMessage, error)
	UpdateCodeContent(ctx context.Context, messageID int, senderID int, codeContent string) (models.GroupMessage, error)
	DeleteGroupMessage(ctx context.Context, messageID int, senderID int) error
}

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// CreateGroupMessage persists a group message. Text stays NULL for
// code-only messages.
func (r *GroupMessageRepo) CreateGroupMessage(ctx context.Context, senderID int, text, codeContent, codeLanguage *string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_messages (sender_id, text, code_content, code_language) VALUES ($1, $2, $3, $4)
        RETURNING id, sender_id, text, code_content, code_language, created_at`, senderID, text, codeContent, codeLanguage).
		Scan(&msg.ID, &msg.SenderID, &msg.Text, &msg.CodeContent, &msg.CodeLanguage, &msg.CreatedAt)
	return msg, err
}

// ListGroupMessages returns all channel messages ordered by creation.
func (r *GroupMessageRepo) ListGroupMessages(ctx context.Context) ([]models.GroupMessage, error) {
	var msgs []models.GroupMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, text, code_content, code_language, created_at
        FROM group_messages ORDER BY created_at ASC`)
	return msgs, err
}

// GetGroupMessage fetches a single message.
func (r *GroupMessageRepo) GetGroupMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg, `SELECT id, sender_id, text, code_content, code_language, created_at
        FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateCodeContent replaces the code of a message; only the author may edit.
func (r *GroupMessageRepo) UpdateCodeContent(ctx context.Context, messageID int, senderID int, codeContent string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `UPDATE group_messages SET code_content=$3 WHERE id=$1 AND sender_id=$2
        RETURNING id, sender_id, text, code_content, code_language, created_at`, messageID, senderID, codeContent).
		Scan(&msg.ID, &msg.SenderID, &msg.Text, &msg.CodeContent, &msg.CodeLanguage, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteGroupMessage removes a message; only the author may delete.
func (r *GroupMessageRepo) DeleteGroupMessage(ctx context.Context, messageID int, senderID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_messages WHERE id=$1 AND sender_id=$2`, messageID, senderID)
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
