package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/models"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
)

type profileRepoStub struct {
	profiles map[string]*models.Profile
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{profiles: make(map[string]*models.Profile)}
}

func (r *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	if _, exists := r.profiles[profile.UID]; exists {
		return &pq.Error{Code: "23505"}
	}
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("prof-%d", len(r.profiles)+1)
	}
	clone := *profile
	r.profiles[profile.UID] = &clone
	return nil
}

func (r *profileRepoStub) GetByUID(ctx context.Context, uid string) (*models.Profile, error) {
	if profile, ok := r.profiles[uid]; ok {
		clone := *profile
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	if _, ok := r.profiles[profile.UID]; !ok {
		return sql.ErrNoRows
	}
	clone := *profile
	r.profiles[profile.UID] = &clone
	return nil
}

func (r *profileRepoStub) Delete(ctx context.Context, uid string) error {
	if _, ok := r.profiles[uid]; !ok {
		return sql.ErrNoRows
	}
	delete(r.profiles, uid)
	return nil
}

func newTestIdentity(profiles identityProfileStore) *IdentityService {
	cache := NewCacheService(nil, nil, 0, nil, false)
	return NewIdentityService(profiles, cache, nil)
}

func newTestProfileService(repo *profileRepoStub) *ProfileService {
	return NewProfileService(repo, newTestIdentity(repo), nil, nil, ProfileServiceConfig{})
}

func validCreateProfile() dto.CreateProfileRequest {
	return dto.CreateProfileRequest{
		Name:     "Asha Rao",
		Email:    "asha@example.edu",
		College:  "IIT Bombay",
		Branch:   "CSE",
		Semester: 5,
	}
}

func validUpdateProfile() dto.UpdateProfileRequest {
	return dto.UpdateProfileRequest{
		Name:     "Asha Rao",
		Email:    "asha@example.edu",
		College:  "IIT Bombay",
		Branch:   "CSE",
		Semester: 5,
	}
}

func TestProfileServiceCreateAndGet(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	profile, err := svc.Create(context.Background(), "uid-1", validCreateProfile())
	require.NoError(t, err)
	assert.Equal(t, "IIT Bombay", profile.College)

	found, err := svc.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, found.ID)
}

func TestProfileServiceCreateConflict(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	_, err := svc.Create(context.Background(), "uid-1", validCreateProfile())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "uid-1", validCreateProfile())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceCreateValidation(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	req := validCreateProfile()
	req.Name = "A"
	_, err := svc.Create(context.Background(), "uid-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validCreateProfile()
	req.Semester = 13
	_, err = svc.Create(context.Background(), "uid-1", req)
	assert.Error(t, err)
}

func TestProfileServiceAvatarRules(t *testing.T) {
	repo := newProfileRepoStub()
	svc := NewProfileService(repo, newTestIdentity(repo), nil, nil, ProfileServiceConfig{MaxAvatarSize: 64})

	req := validCreateProfile()
	req.Avatar = "not-a-data-url"
	_, err := svc.Create(context.Background(), "uid-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validCreateProfile()
	req.Avatar = "data:image/png;base64," + strings.Repeat("A", 100)
	_, err = svc.Create(context.Background(), "uid-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = validCreateProfile()
	req.Avatar = "data:image/png;base64,iVBORw0="
	profile, err := svc.Create(context.Background(), "uid-1", req)
	require.NoError(t, err)
	assert.Equal(t, req.Avatar, profile.AvatarURL)
}

func TestProfileServiceGetNotFound(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceUpdateReplacesAllFields(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	created, err := svc.Create(context.Background(), "uid-1", validCreateProfile())
	require.NoError(t, err)
	assert.Equal(t, "", created.AvatarURL)

	req := validUpdateProfile()
	req.College = "NIT Trichy"
	req.Bio = "signals enthusiast"
	updated, err := svc.Update(context.Background(), "uid-1", req)
	require.NoError(t, err)
	assert.Equal(t, "NIT Trichy", updated.College)
	assert.Equal(t, "signals enthusiast", updated.Bio)

	// The replace is wholesale: a follow-up without bio clears it.
	updated, err = svc.Update(context.Background(), "uid-1", validUpdateProfile())
	require.NoError(t, err)
	assert.Equal(t, "", updated.Bio)
}

func TestProfileServiceUpdateMissingProfile(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	_, err := svc.Update(context.Background(), "ghost", validUpdateProfile())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileServiceDelete(t *testing.T) {
	repo := newProfileRepoStub()
	svc := newTestProfileService(repo)

	_, err := svc.Create(context.Background(), "uid-1", validCreateProfile())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "uid-1"))

	_, err = svc.Get(context.Background(), "uid-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), "uid-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
