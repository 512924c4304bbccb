package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/notehub/notehub-api/internal/models"
	"github.com/notehub/notehub-api/internal/query"
)

const resourceColumns = `id, title, description, subject, branch, semester, year, resource_type, tags,
	privacy, uploader_uid, uploader_name, uploader_college, blob_id, file_name, file_size, mime_type,
	views, downloads, avg_rating, rating_count, created_at, updated_at`

// ResourceRepository handles resource metadata persistence. File bytes
// live in the blob store; rows here only reference them by blob id.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository constructs the repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts the metadata row for an uploaded resource.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = now
	}
	resource.UpdatedAt = now

	const query = `INSERT INTO resources
	(id, title, description, subject, branch, semester, year, resource_type, tags, privacy,
	 uploader_uid, uploader_name, uploader_college, blob_id, file_name, file_size, mime_type,
	 views, downloads, avg_rating, rating_count, created_at, updated_at)
	VALUES (:id, :title, :description, :subject, :branch, :semester, :year, :resource_type, :tags, :privacy,
	 :uploader_uid, :uploader_name, :uploader_college, :blob_id, :file_name, :file_size, :mime_type,
	 :views, :downloads, :avg_rating, :rating_count, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resource); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// GetByID retrieves one resource row.
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1 LIMIT 1`
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get resource by id: %w", err)
	}
	return &resource, nil
}

// ListByOwner returns every resource uploaded by the given uid, newest
// first.
func (r *ResourceRepository) ListByOwner(ctx context.Context, uploaderUID string) ([]models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE uploader_uid = $1 ORDER BY created_at DESC`
	var records []models.Resource
	if err := r.db.SelectContext(ctx, &records, query, uploaderUID); err != nil {
		return nil, fmt.Errorf("list resources by owner: %w", err)
	}
	return records, nil
}

// Browse returns the page of resources matching the composed predicate.
func (r *ResourceRepository) Browse(ctx context.Context, p query.Predicate, orderBy string, limit, offset int) ([]models.Resource, error) {
	where, args := query.Render(p)

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + resourceColumns + ` FROM resources WHERE `)
	builder.WriteString(where)
	builder.WriteString(" ORDER BY " + orderBy)

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var records []models.Resource
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("browse resources: %w", err)
	}
	return records, nil
}

// CountBrowse returns the total match count for the composed predicate.
func (r *ResourceRepository) CountBrowse(ctx context.Context, p query.Predicate) (int, error) {
	where, args := query.Render(p)
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM resources WHERE "+where, args...); err != nil {
		return 0, fmt.Errorf("count resources: %w", err)
	}
	return total, nil
}

// Update persists the mutable metadata fields of a resource.
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	resource.UpdatedAt = time.Now().UTC()
	const query = `UPDATE resources SET
	title = :title, description = :description, subject = :subject, branch = :branch,
	semester = :semester, year = :year, resource_type = :resource_type, tags = :tags,
	privacy = :privacy, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, resource)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check resource update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the metadata row.
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM resources WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check resource delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViews bumps the view counter atomically in the database.
func (r *ResourceRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE resources SET views = views + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// IncrementDownloads bumps the download counter atomically in the
// database.
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, id string) error {
	const query = `UPDATE resources SET downloads = downloads + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment downloads: %w", err)
	}
	return nil
}

// UpdateRatingStats overwrites the denormalized rating aggregate.
func (r *ResourceRepository) UpdateRatingStats(ctx context.Context, id string, stats models.RatingStats) error {
	const query = `UPDATE resources SET avg_rating = $2, rating_count = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, stats.AvgRating, stats.RatingCount); err != nil {
		return fmt.Errorf("update rating stats: %w", err)
	}
	return nil
}
