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
	"github.com/notehub/notehub-api/internal/repository"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
)

type profileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUID(ctx context.Context, uid string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, uid string) error
}

// ProfileServiceConfig tunes profile validation.
type ProfileServiceConfig struct {
	MaxAvatarSize int64
}

// ProfileService manages profile registration, replacement and removal.
type ProfileService struct {
	repo      profileStore
	identity  *IdentityService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ProfileServiceConfig
}

// NewProfileService constructs the service with defaults.
func NewProfileService(repo profileStore, identity *IdentityService, validate *validator.Validate, logger *zap.Logger, cfg ProfileServiceConfig) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAvatarSize <= 0 {
		cfg.MaxAvatarSize = 5 * 1024 * 1024
	}
	return &ProfileService{repo: repo, identity: identity, validator: validate, logger: logger, cfg: cfg}
}

// Create registers the profile for a uid. A second registration for the
// same uid conflicts rather than overwriting.
func (s *ProfileService) Create(ctx context.Context, uid string, req dto.CreateProfileRequest) (*models.Profile, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if err := s.validateAvatar(req.Avatar); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UID:       uid,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		College:   strings.TrimSpace(req.College),
		Branch:    strings.TrimSpace(req.Branch),
		Semester:  req.Semester,
		Bio:       strings.TrimSpace(req.Bio),
		AvatarURL: req.Avatar,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "profile already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}

	if s.identity != nil {
		s.identity.Invalidate(ctx, uid)
	}
	return profile, nil
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, uid string) (*models.Profile, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	profile, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Update replaces the caller's profile wholesale. The identity cache is
// invalidated since the college may have moved. Resources uploaded
// before the change keep their captured college.
func (s *ProfileService) Update(ctx context.Context, uid string, req dto.UpdateProfileRequest) (*models.Profile, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if err := s.validateAvatar(req.Avatar); err != nil {
		return nil, err
	}

	profile, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	profile.Name = strings.TrimSpace(req.Name)
	profile.Email = strings.TrimSpace(req.Email)
	profile.College = strings.TrimSpace(req.College)
	profile.Branch = strings.TrimSpace(req.Branch)
	profile.Semester = req.Semester
	profile.Bio = strings.TrimSpace(req.Bio)
	profile.AvatarURL = req.Avatar

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	if s.identity != nil {
		s.identity.Invalidate(ctx, uid)
	}
	return profile, nil
}

// Delete removes the caller's profile. Resources the caller uploaded
// are left untouched; their captured college keeps governing access.
func (s *ProfileService) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete profile")
	}

	if s.identity != nil {
		s.identity.Invalidate(ctx, uid)
	}
	return nil
}

func (s *ProfileService) validateAvatar(avatar string) error {
	if avatar == "" {
		return nil
	}
	if !strings.HasPrefix(avatar, "data:") {
		return appErrors.Clone(appErrors.ErrValidation, "avatar must be a data URL")
	}
	if int64(len(avatar)) > s.cfg.MaxAvatarSize {
		return appErrors.Clone(appErrors.ErrValidation, "avatar exceeds the size limit")
	}
	return nil
}
