package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/notehub/notehub-api/internal/models"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
)

type identityProfileStore interface {
	GetByUID(ctx context.Context, uid string) (*models.Profile, error)
}

// IdentityService resolves an auth subject to the college recorded on
// their profile, caching lookups since every browse needs one.
type IdentityService struct {
	profiles identityProfileStore
	cache    *CacheService
	logger   *zap.Logger
}

// NewIdentityService constructs the resolver.
func NewIdentityService(profiles identityProfileStore, cache *CacheService, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{profiles: profiles, cache: cache, logger: logger}
}

func identityCacheKey(uid string) string {
	return "identity:college:" + uid
}

// ResolveCollege returns the college on the uid's profile. A missing
// profile is a distinct forbidden condition so clients can prompt the
// user to complete registration.
func (s *IdentityService) ResolveCollege(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", appErrors.ErrUnauthorized
	}

	var college string
	if hit, err := s.cache.Get(ctx, identityCacheKey(uid), &college); err == nil && hit {
		return college, nil
	}

	profile, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.ErrProfileRequired
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve identity")
	}

	if err := s.cache.Set(ctx, identityCacheKey(uid), profile.College); err != nil {
		s.logger.Warn("identity cache write failed", zap.String("uid", uid), zap.Error(err))
	}
	return profile.College, nil
}

// Invalidate drops the cached college for a uid. Called after profile
// writes so later resolutions see the change.
func (s *IdentityService) Invalidate(ctx context.Context, uid string) {
	s.cache.Delete(ctx, identityCacheKey(uid))
}
