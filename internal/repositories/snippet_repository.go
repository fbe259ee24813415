package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"codechat-service/internal/models"
)

var ErrSnippetNotFound = errors.New("snippet not found")

// SnippetRepository abstracts saved-snippet persistence. All queries are
// owner scoped: a snippet is only ever visible to the user who created it.
type SnippetRepository interface {
	CreateSnippet(ctx context.Context, ownerID int, title, code string) (models.Snippet, error)
	ListSnippets(ctx context.Context, ownerID int) ([]models.Snippet, error)
	GetSnippet(ctx context.Context, snippetID int, ownerID int) (models.Snippet, error)
	UpdateSnippet(ctx context.Context, snippetID int, ownerID int, code, lastOutput *string) (models.Snippet, error)
	DeleteSnippet(ctx context.Context, snippetID int, ownerID int) error
}

// SnippetRepo is a sqlx implementation of SnippetRepository.
type SnippetRepo struct {
	db *sqlx.DB
}

// NewSnippetRepo constructs a SnippetRepo.
func NewSnippetRepo(db *sqlx.DB) *SnippetRepo {
	return &SnippetRepo{db: db}
}

// CreateSnippet stores a new snippet for the owner.
func (r *SnippetRepo) CreateSnippet(ctx context.Context, ownerID int, title, code string) (models.Snippet, error) {
	var snippet models.Snippet
	err := r.db.QueryRowxContext(ctx, `INSERT INTO snippets (owner_id, title, code) VALUES ($1, $2, $3)
        RETURNING id, owner_id, title, code, last_output, created_at`, ownerID, title, code).
		Scan(&snippet.ID, &snippet.OwnerID, &snippet.Title, &snippet.Code, &snippet.LastOutput, &snippet.CreatedAt)
	return snippet, err
}

// ListSnippets returns the owner's snippets, newest first.
func (r *SnippetRepo) ListSnippets(ctx context.Context, ownerID int) ([]models.Snippet, error) {
	var snippets []models.Snippet
	err := r.db.SelectContext(ctx, &snippets, `SELECT id, owner_id, title, code, last_output, created_at
        FROM snippets WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
	return snippets, err
}

// GetSnippet fetches one snippet owned by the user.
func (r *SnippetRepo) GetSnippet(ctx context.Context, snippetID int, ownerID int) (models.Snippet, error) {
	var snippet models.Snippet
	err := r.db.GetContext(ctx, &snippet, `SELECT id, owner_id, title, code, last_output, created_at
        FROM snippets WHERE id=$1 AND owner_id=$2`, snippetID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snippet{}, ErrSnippetNotFound
	}
	return snippet, err
}

// UpdateSnippet updates code and/or cached output of an owned snippet.
// Nil fields are left unchanged.
func (r *SnippetRepo) UpdateSnippet(ctx context.Context, snippetID int, ownerID int, code, lastOutput *string) (models.Snippet, error) {
	var snippet models.Snippet
	err := r.db.QueryRowxContext(ctx, `UPDATE snippets
        SET code = COALESCE($3, code), last_output = COALESCE($4, last_output)
        WHERE id=$1 AND owner_id=$2
        RETURNING id, owner_id, title, code, last_output, created_at`, snippetID, ownerID, code, lastOutput).
		Scan(&snippet.ID, &snippet.OwnerID, &snippet.Title, &snippet.Code, &snippet.LastOutput, &snippet.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snippet{}, ErrSnippetNotFound
	}
	return snippet, err
}

// DeleteSnippet removes an owned snippet.
func (r *SnippetRepo) DeleteSnippet(ctx context.Context, snippetID int, ownerID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snippets WHERE id=$1 AND owner_id=$2`, snippetID, ownerID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSnippetNotFound
	}
	return nil
}
