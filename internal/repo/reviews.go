package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"Plant3D/internal/review"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, r review.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (review.Review, error)
	UpdateReview(ctx context.Context, r review.Review) error
	ListReviews(ctx context.Context, ownerID int) ([]review.Review, error)
}

// PostgresReviewRepository stores the parameter records as JSONB columns.
type PostgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewDB(db *sql.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

type jsonColumns struct {
	params, overrides, baseline, warnings []byte
}

func marshalColumns(r review.Review) (jsonColumns, error) {
	var c jsonColumns
	var err error
	if c.params, err = json.Marshal(r.Params); err != nil {
		return c, fmt.Errorf("marshal params: %w", err)
	}
	if c.overrides, err = json.Marshal(r.Overrides); err != nil {
		return c, fmt.Errorf("marshal overrides: %w", err)
	}
	if c.baseline, err = json.Marshal(r.Baseline); err != nil {
		return c, fmt.Errorf("marshal baseline: %w", err)
	}
	if c.warnings, err = json.Marshal(r.Warnings); err != nil {
		return c, fmt.Errorf("marshal warnings: %w", err)
	}
	return c, nil
}

func (c jsonColumns) unmarshal(r *review.Review) error {
	if err := json.Unmarshal(c.params, &r.Params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}
	if err := json.Unmarshal(c.overrides, &r.Overrides); err != nil {
		return fmt.Errorf("unmarshal overrides: %w", err)
	}
	if err := json.Unmarshal(c.baseline, &r.Baseline); err != nil {
		return fmt.Errorf("unmarshal baseline: %w", err)
	}
	if err := json.Unmarshal(c.warnings, &r.Warnings); err != nil {
		return fmt.Errorf("unmarshal warnings: %w", err)
	}
	return nil
}

func (p *PostgresReviewRepository) CreateReview(ctx context.Context, r review.Review) error {
	c, err := marshalColumns(r)
	if err != nil {
		return err
	}
	query := `INSERT INTO reviews (id, owner_id, source, params, overrides, baseline, warnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = p.db.ExecContext(ctx, query, r.ID, r.OwnerID, r.Source,
		c.params, c.overrides, c.baseline, c.warnings, r.CreatedAt, r.UpdatedAt)
	return err
}

const selectReview = `SELECT id, owner_id, source, params, overrides, baseline, warnings, created_at, updated_at FROM reviews`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(s rowScanner) (review.Review, error) {
	var r review.Review
	var c jsonColumns
	err := s.Scan(&r.ID, &r.OwnerID, &r.Source, &c.params, &c.overrides, &c.baseline, &c.warnings, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return review.Review{}, err
	}
	if err := c.unmarshal(&r); err != nil {
		return review.Review{}, err
	}
	return r, nil
}

func (p *PostgresReviewRepository) GetReview(ctx context.Context, id uuid.UUID) (review.Review, error) {
	r, err := scanReview(p.db.QueryRowContext(ctx, selectReview+" WHERE id=$1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return review.Review{}, review.ErrNotFound
	}
	return r, err
}

func (p *PostgresReviewRepository) UpdateReview(ctx context.Context, r review.Review) error {
	c, err := marshalColumns(r)
	if err != nil {
		return err
	}
	query := `UPDATE reviews SET overrides=$2, baseline=$3, warnings=$4, updated_at=$5 WHERE id=$1`
	res, err := p.db.ExecContext(ctx, query, r.ID, c.overrides, c.baseline, c.warnings, r.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return review.ErrNotFound
	}
	return nil
}

func (p *PostgresReviewRepository) ListReviews(ctx context.Context, ownerID int) ([]review.Review, error) {
	rows, err := p.db.QueryContext(ctx, selectReview+" WHERE owner_id=$1 ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
