package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/models"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
)

type reviewStore interface {
	FindByResourceAndReviewer(ctx context.Context, resourceID, reviewerUID string) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	ListByResource(ctx context.Context, resourceID string) ([]models.Review, error)
	AggregateByResource(ctx context.Context, resourceID string) (models.RatingStats, error)
}

type reviewResourceStore interface {
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	UpdateRatingStats(ctx context.Context, id string, stats models.RatingStats) error
}

// ReviewSubmission is the outcome of an upsert, including the fresh
// aggregate.
type ReviewSubmission struct {
	Review *models.Review     `json:"review"`
	Stats  models.RatingStats `json:"-"`
}

// ReviewService manages review upserts and the denormalized rating
// aggregate on resources.
type ReviewService struct {
	reviews   reviewStore
	resources reviewResourceStore
	profiles  profileStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(reviews reviewStore, resources reviewResourceStore, profiles profileStore, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{reviews: reviews, resources: resources, profiles: profiles, validator: validate, logger: logger}
}

// Submit records or replaces the caller's review of a resource, then
// recomputes the aggregate from all stored reviews. The recompute reads
// every review rather than adjusting incrementally, so the stored
// average can never drift.
func (s *ReviewService) Submit(ctx context.Context, uid, resourceID string, req dto.SubmitReviewRequest) (*ReviewSubmission, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}

	reviewerName := "Anonymous"
	if profile, err := s.profiles.GetByUID(ctx, uid); err == nil {
		reviewerName = profile.Name
	}

	review, err := s.reviews.FindByResourceAndReviewer(ctx, resourceID, uid)
	switch {
	case err == nil:
		review.Rating = req.Rating
		review.Comment = strings.TrimSpace(req.Comment)
		review.ReviewerName = reviewerName
		if err := s.reviews.Update(ctx, review); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update review")
		}
	case errors.Is(err, sql.ErrNoRows):
		review = &models.Review{
			ResourceID:   resourceID,
			ReviewerUID:  uid,
			ReviewerName: reviewerName,
			Rating:       req.Rating,
			Comment:      strings.TrimSpace(req.Comment),
		}
		if err := s.reviews.Create(ctx, review); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
		}
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up review")
	}

	stats, err := s.reviews.AggregateByResource(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate reviews")
	}
	if err := s.resources.UpdateRatingStats(ctx, resourceID, stats); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store rating stats")
	}

	return &ReviewSubmission{Review: review, Stats: stats}, nil
}

// List returns every review of a resource, newest first.
func (s *ReviewService) List(ctx context.Context, resourceID string) ([]models.Review, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	reviews, err := s.reviews.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, nil
}
