package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/crucial707/profiles-api/internal/models"
)

const profileColumns = "id, email, name, password_hash, is_active, is_staff, created_at"

// ==========================
// ProfileRepo
// ==========================
type ProfileRepo struct {
	DB *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{DB: db}
}

func scanProfile(s scanner) (*models.Profile, error) {
	p := &models.Profile{}
	if err := s.Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.IsActive, &p.IsStaff, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// ==========================
// Create Profile
// ==========================
func (r *ProfileRepo) Create(ctx context.Context, email, name, passwordHash string) (*models.Profile, error) {
	query := `
		INSERT INTO user_profiles (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + profileColumns

	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, NormalizeEmail(email), name, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "insert profile")
	}
	return p, nil
}

// ==========================
// Get By ID
// ==========================
func (r *ProfileRepo) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`

	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get profile %d", id)
	}
	return p, nil
}

// ==========================
// Get By Email
// ==========================
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE email = $1`

	p, err := scanProfile(r.DB.QueryRowContext(ctx, query, NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get profile by email")
	}
	return p, nil
}

// ==========================
// List Profiles
// ==========================

// List returns profiles ordered by id. Every whitespace- or comma-separated term in
// search must match name or email (case-insensitive); an empty search matches all.
func (r *ProfileRepo) List(ctx context.Context, search string, limit, offset int) ([]models.Profile, error) {
	var (
		where []string
		args  []any
	)
	for _, term := range SearchTerms(search) {
		args = append(args, "%"+escapeLike(term)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", n, n))
	}

	query := `SELECT ` + profileColumns + ` FROM user_profiles`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// ==========================
// Update Profile
// ==========================

// Update writes email, name and password hash of p.
func (r *ProfileRepo) Update(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		UPDATE user_profiles
		SET email = $1, name = $2, password_hash = $3
		WHERE id = $4
		RETURNING ` + profileColumns

	updated, err := scanProfile(r.DB.QueryRowContext(ctx, query, NormalizeEmail(p.Email), p.Name, p.PasswordHash, p.ID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		case isUniqueViolation(err):
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrapf(err, "update profile %d", p.ID)
	}
	return updated, nil
}

// ==========================
// Delete Profile
// ==========================
func (r *ProfileRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete profile %d", id)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// NormalizeEmail lower-cases the domain part of an address and trims surrounding space.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// SearchTerms splits a search query on whitespace and commas.
func SearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
