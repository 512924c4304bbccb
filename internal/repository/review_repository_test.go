package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/notehub/notehub-api/internal/models"
)

func TestReviewRepositoryFindByResourceAndReviewer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	rows := sqlmock.NewRows([]string{"id", "resource_id", "reviewer_uid", "reviewer_name", "rating", "comment", "created_at", "updated_at"}).
		AddRow("rev-1", "res-1", "uid-2", "Vikram Iyer", 4.5, "solid notes", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews WHERE resource_id = $1 AND reviewer_uid = $2")).
		WithArgs("res-1", "uid-2").
		WillReturnRows(rows)

	review, err := repo.FindByResourceAndReviewer(context.Background(), "res-1", "uid-2")
	require.NoError(t, err)
	require.Equal(t, 4.5, review.Rating)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews WHERE resource_id = $1 AND reviewer_uid = $2")).
		WithArgs("res-1", "uid-3").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByResourceAndReviewer(context.Background(), "res-1", "uid-3")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReviewRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	review := &models.Review{ResourceID: "res-1", ReviewerUID: "uid-2", Rating: 5}
	require.NoError(t, repo.Create(context.Background(), review))
	require.NotEmpty(t, review.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET rating")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	review.Rating = 3
	require.NoError(t, repo.Update(context.Background(), review))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryAggregateByResource(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS rating_count")).
		WithArgs("res-1").
		WillReturnRows(sqlmock.NewRows([]string{"avg_rating", "rating_count"}).AddRow(4.5, 2))

	stats, err := repo.AggregateByResource(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, 4.5, stats.AvgRating)
	require.Equal(t, 2, stats.RatingCount)
}

func TestReviewRepositoryAggregateEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReviewRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS rating_count")).
		WithArgs("res-2").
		WillReturnRows(sqlmock.NewRows([]string{"avg_rating", "rating_count"}).AddRow(0.0, 0))

	stats, err := repo.AggregateByResource(context.Background(), "res-2")
	require.NoError(t, err)
	require.Zero(t, stats.AvgRating)
	require.Zero(t, stats.RatingCount)
}
