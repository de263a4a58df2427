package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/crucial707/profiles-api/internal/models"
)

const feedColumns = "id, user_profile_id, status_text, created_on"

// FeedRepo persists profile feed items.
type FeedRepo struct {
	DB *sql.DB
}

func NewFeedRepo(db *sql.DB) *FeedRepo {
	return &FeedRepo{DB: db}
}

func scanFeedItem(s scanner) (*models.FeedItem, error) {
	f := &models.FeedItem{}
	if err := s.Scan(&f.ID, &f.ProfileID, &f.StatusText, &f.CreatedOn); err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a status for profileID.
func (r *FeedRepo) Create(ctx context.Context, profileID int, statusText string) (*models.FeedItem, error) {
	query := `
		INSERT INTO profile_feed_items (user_profile_id, status_text)
		VALUES ($1, $2)
		RETURNING ` + feedColumns

	f, err := scanFeedItem(r.DB.QueryRowContext(ctx, query, profileID, statusText))
	if err != nil {
		return nil, errors.Wrap(err, "insert feed item")
	}
	return f, nil
}

func (r *FeedRepo) GetByID(ctx context.Context, id int) (*models.FeedItem, error) {
	query := `SELECT ` + feedColumns + ` FROM profile_feed_items WHERE id = $1`

	f, err := scanFeedItem(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get feed item %d", id)
	}
	return f, nil
}

// List returns feed items ordered by id. ownerID 0 lists every profile's items.
func (r *FeedRepo) List(ctx context.Context, ownerID, limit, offset int) ([]models.FeedItem, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if ownerID > 0 {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+feedColumns+` FROM profile_feed_items WHERE user_profile_id = $1 ORDER BY id LIMIT $2 OFFSET $3`,
			ownerID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+feedColumns+` FROM profile_feed_items ORDER BY id LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list feed items")
	}
	defer rows.Close()

	items := []models.FeedItem{}
	for rows.Next() {
		f, err := scanFeedItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan feed item")
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// Update replaces the status text. Owner and creation time never change.
func (r *FeedRepo) Update(ctx context.Context, id int, statusText string) (*models.FeedItem, error) {
	query := `
		UPDATE profile_feed_items
		SET status_text = $1
		WHERE id = $2
		RETURNING ` + feedColumns

	f, err := scanFeedItem(r.DB.QueryRowContext(ctx, query, statusText, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "update feed item %d", id)
	}
	return f, nil
}

func (r *FeedRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM profile_feed_items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete feed item %d", id)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
