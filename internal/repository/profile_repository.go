package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// ProfileRepository reads application profiles of auth-provider users.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns a profile or sql.ErrNoRows.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, full_name, role FROM profiles WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}
