package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notehub/notehub-api/internal/models"
)

const reviewColumns = `id, resource_id, reviewer_uid, reviewer_name, rating, comment, created_at, updated_at`

// ReviewRepository handles review persistence. The pair
// (resource_id, reviewer_uid) carries a unique constraint.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs the repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindByResourceAndReviewer returns the reviewer's existing review for
// the resource, or sql.ErrNoRows.
func (r *ReviewRepository) FindByResourceAndReviewer(ctx context.Context, resourceID, reviewerUID string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE resource_id = $1 AND reviewer_uid = $2 LIMIT 1`
	var review models.Review
	if err := r.db.GetContext(ctx, &review, query, resourceID, reviewerUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &review, nil
}

// Create inserts a new review row.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now

	const query = `INSERT INTO reviews
	(id, resource_id, reviewer_uid, reviewer_name, rating, comment, created_at, updated_at)
	VALUES (:id, :resource_id, :reviewer_uid, :reviewer_name, :rating, :comment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// Update replaces the rating and comment of an existing review.
func (r *ReviewRepository) Update(ctx context.Context, review *models.Review) error {
	review.UpdatedAt = time.Now().UTC()
	const query = `UPDATE reviews SET rating = :rating, comment = :comment, reviewer_name = :reviewer_name, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, review)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check review update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByResource returns all reviews for a resource, newest first.
func (r *ReviewRepository) ListByResource(ctx context.Context, resourceID string) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE resource_id = $1 ORDER BY created_at DESC`
	var records []models.Review
	if err := r.db.SelectContext(ctx, &records, query, resourceID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return records, nil
}

// AggregateByResource recomputes the rating aggregate from all stored
// reviews of the resource. No reviews yields a zero aggregate.
func (r *ReviewRepository) AggregateByResource(ctx context.Context, resourceID string) (models.RatingStats, error) {
	const query = `SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS rating_count
	FROM reviews WHERE resource_id = $1`
	var stats models.RatingStats
	if err := r.db.GetContext(ctx, &stats, query, resourceID); err != nil {
		return models.RatingStats{}, fmt.Errorf("aggregate reviews: %w", err)
	}
	return stats, nil
}
