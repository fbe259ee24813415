package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"codechat-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, userID int, displayName, avatarGlyph string) (models.Profile, error)
	GetProfile(ctx context.Context, userID int) (models.Profile, error)
	BulkProfiles(ctx context.Context, ids []int) ([]models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// UpsertProfile creates or updates the caller's profile row.
func (r *ProfileRepo) UpsertProfile(ctx context.Context, userID int, displayName, avatarGlyph string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (id, display_name, avatar_glyph) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, avatar_glyph = EXCLUDED.avatar_glyph
        RETURNING id, display_name, avatar_glyph, created_at`, userID, displayName, avatarGlyph).
		Scan(&profile.ID, &profile.DisplayName, &profile.AvatarGlyph, &profile.CreatedAt)
	return profile, err
}

// GetProfile fetches a single profile.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID int) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT id, display_name, avatar_glyph, created_at FROM profiles WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, err
}

// BulkProfiles fetches multiple profiles in one query.
func (r *ProfileRepo) BulkProfiles(ctx context.Context, ids []int) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, display_name, avatar_glyph, created_at FROM profiles WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var profiles []models.Profile
	err = r.db.SelectContext(ctx, &profiles, r.db.Rebind(query), args...)
	return profiles, err
}
