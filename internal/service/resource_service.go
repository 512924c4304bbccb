package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/models"
	"github.com/notehub/notehub-api/internal/query"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
	"github.com/notehub/notehub-api/pkg/storage"
)

type resourceStore interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	Browse(ctx context.Context, p query.Predicate, orderBy string, limit, offset int) ([]models.Resource, error)
	CountBrowse(ctx context.Context, p query.Predicate) (int, error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
}

// ResourceUpload carries the file stream accompanying an upload.
type ResourceUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

// ResourceDownload bundles the blob stream with serving metadata.
type ResourceDownload struct {
	Content  io.ReadCloser
	Filename string
	MimeType string
	Size     int64
}

// ResourceServiceConfig holds upload validation parameters.
type ResourceServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

// ResourceService manages resource metadata, file storage and access
// control.
type ResourceService struct {
	repo      resourceStore
	blobs     storage.BlobStore
	profiles  profileStore
	identity  *IdentityService
	policy    AccessPolicy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ResourceServiceConfig
	mimeSet   map[string]struct{}
	janitor   *BlobJanitor
}

// NewResourceService constructs the service with defaults.
func NewResourceService(repo resourceStore, blobs storage.BlobStore, profiles profileStore, identity *IdentityService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ResourceServiceConfig) *ResourceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 50 * 1024 * 1024
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &ResourceService{
		repo:      repo,
		blobs:     blobs,
		profiles:  profiles,
		identity:  identity,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// WithJanitor enables background retries for blob cleanups that fail
// inline.
func (s *ResourceService) WithJanitor(j *BlobJanitor) *ResourceService {
	s.janitor = j
	return s
}

// Upload validates metadata and file, stores the blob, then the
// metadata row. The uploader's college and name are denormalized onto
// the row at this point and drive access checks from then on.
func (s *ResourceService) Upload(ctx context.Context, uid string, meta dto.UploadResourceRequest, upload ResourceUpload) (*models.Resource, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(meta); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	if err := validateResourceType(meta.ResourceType); err != nil {
		return nil, err
	}
	if err := validateYear(meta.Year); err != nil {
		return nil, err
	}
	tags, err := parseTags(meta.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.validateFile(upload); err != nil {
		return nil, err
	}

	uploader, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrProfileRequired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load uploader profile")
	}

	blobID, err := s.blobs.Put(ctx, upload.Content, upload.Size, upload.Filename, upload.MimeType, map[string]string{"uploader": uid})
	s.metrics.ObserveBlobOperation("put", err)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to store file")
	}

	privacy := models.PrivacyPrivate
	if meta.Privacy == string(models.PrivacyPublic) {
		privacy = models.PrivacyPublic
	}
	branch := strings.TrimSpace(meta.Branch)
	if branch == "" {
		branch = uploader.Branch
	}

	resource := &models.Resource{
		Title:           strings.TrimSpace(meta.Title),
		Description:     strings.TrimSpace(meta.Description),
		Subject:         strings.TrimSpace(meta.Subject),
		Branch:          branch,
		Semester:        meta.Semester,
		Year:            meta.Year,
		ResourceType:    models.ResourceType(meta.ResourceType),
		Tags:            tags,
		Privacy:         privacy,
		UploaderUID:     uid,
		UploaderName:    uploader.Name,
		UploaderCollege: uploader.College,
		BlobID:          blobID,
		FileName:        upload.Filename,
		FileSize:        upload.Size,
		MimeType:        upload.MimeType,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		// The blob is orphaned otherwise.
		if _, delErr := s.blobs.Delete(ctx, blobID); delErr != nil {
			s.logger.Error("orphaned blob after failed create", zap.String("blobId", blobID), zap.Error(delErr))
			if s.janitor != nil {
				s.janitor.Schedule(blobID)
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}

	s.metrics.ObserveUploadBytes(upload.Size)
	return resource, nil
}

// Mine lists the caller's own uploads, optionally narrowed by type,
// semester and free-text search.
func (s *ResourceService) Mine(ctx context.Context, uid string, filter models.ResourceFilter) ([]models.Resource, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}

	parts := []query.Predicate{query.Eq{Column: "uploader_uid", Value: uid}}
	if filter.ResourceType != "" {
		parts = append(parts, query.Eq{Column: "resource_type", Value: string(filter.ResourceType)})
	}
	if filter.Semester > 0 {
		parts = append(parts, query.Eq{Column: "semester", Value: filter.Semester})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		parts = append(parts, query.Or(
			query.Contains{Column: "title", Value: search},
			query.Contains{Column: "subject", Value: search},
			query.TagsContain{Column: "tags", Value: search},
		))
	}

	records, err := s.repo.Browse(ctx, query.And(parts...), query.OrderBy(models.SortLatest), 100, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return records, nil
}

// Browse returns the page of resources visible to the caller. A
// profile is required since visibility hinges on the caller's college.
func (s *ResourceService) Browse(ctx context.Context, uid string, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	if uid == "" {
		return nil, nil, appErrors.ErrUnauthorized
	}
	college, err := s.identity.ResolveCollege(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	p := query.Compose(college, filter)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	total, err := s.repo.CountBrowse(ctx, p)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count resources")
	}

	records, err := s.repo.Browse(ctx, p, query.OrderBy(filter.SortBy), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to browse resources")
	}

	return records, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns one resource, enforcing the read policy. Reading full
// detail counts as a view, so the view counter is bumped here.
func (s *ResourceService) Get(ctx context.Context, uid, id string) (*models.Resource, error) {
	resource, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, uid, resource); err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, resource.ID); err != nil {
		s.logger.Warn("view counter increment failed", zap.String("resourceId", resource.ID), zap.Error(err))
	}
	return resource, nil
}

// Update applies partial metadata changes. Only the uploader may edit,
// and the stored file is immutable.
func (s *ResourceService) Update(ctx context.Context, uid, id string, req dto.UpdateResourceRequest) (*models.Resource, error) {
	if uid == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	resource, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.UploaderUID != uid {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the uploader may edit a resource")
	}

	if req.Title != nil {
		resource.Title = strings.TrimSpace(*req.Title)
	}
	if req.Subject != nil {
		resource.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Branch != nil {
		resource.Branch = strings.TrimSpace(*req.Branch)
	}
	if req.Semester != nil {
		resource.Semester = *req.Semester
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return nil, err
		}
		resource.Year = *req.Year
	}
	if req.ResourceType != nil {
		if err := validateResourceType(*req.ResourceType); err != nil {
			return nil, err
		}
		resource.ResourceType = models.ResourceType(*req.ResourceType)
	}
	if req.Description != nil {
		resource.Description = strings.TrimSpace(*req.Description)
	}
	if req.Tags != nil {
		tags, err := parseTags(strings.Join(req.Tags, ","))
		if err != nil {
			return nil, err
		}
		resource.Tags = tags
	}
	if req.Privacy != nil {
		resource.Privacy = models.Privacy(*req.Privacy)
	}

	if err := s.repo.Update(ctx, resource); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource")
	}
	return resource, nil
}

// Delete removes the metadata row and then the blob. A failed blob
// cleanup does not fail the delete; the metadata row is already gone
// and the orphan is only a storage leak. The returned flag reports
// whether cleanup succeeded.
func (s *ResourceService) Delete(ctx context.Context, uid, id string) (bool, error) {
	if uid == "" {
		return false, appErrors.ErrUnauthorized
	}
	resource, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	if resource.UploaderUID != uid {
		return false, appErrors.Clone(appErrors.ErrForbidden, "only the uploader may delete a resource")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}

	_, err = s.blobs.Delete(ctx, resource.BlobID)
	s.metrics.ObserveBlobOperation("delete", err)
	if err != nil {
		s.logger.Error("blob cleanup failed after delete",
			zap.String("resourceId", id), zap.String("blobId", resource.BlobID), zap.Error(err))
		if s.janitor != nil {
			s.janitor.Schedule(resource.BlobID)
		}
		return false, nil
	}
	return true, nil
}

// Download streams the stored file and bumps the download counter.
func (s *ResourceService) Download(ctx context.Context, uid, id string) (*ResourceDownload, error) {
	download, resource, err := s.open(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementDownloads(ctx, resource.ID); err != nil {
		s.logger.Warn("download counter increment failed", zap.String("resourceId", resource.ID), zap.Error(err))
	}
	return download, nil
}

// View streams the stored file for inline display and bumps the view
// counter.
func (s *ResourceService) View(ctx context.Context, uid, id string) (*ResourceDownload, error) {
	download, resource, err := s.open(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, resource.ID); err != nil {
		s.logger.Warn("view counter increment failed", zap.String("resourceId", resource.ID), zap.Error(err))
	}
	return download, nil
}

func (s *ResourceService) open(ctx context.Context, uid, id string) (*ResourceDownload, *models.Resource, error) {
	resource, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeRead(ctx, uid, resource); err != nil {
		return nil, nil, err
	}

	content, info, err := s.blobs.Get(ctx, resource.BlobID)
	s.metrics.ObserveBlobOperation("get", err)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, appErrors.Clone(appErrors.ErrStorageFailure, "stored file is missing")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, "failed to open stored file")
	}

	filename := resource.FileName
	if filename == "" {
		filename = info.Filename
	}
	mimeType := resource.MimeType
	if mimeType == "" {
		mimeType = info.MediaType
	}
	return &ResourceDownload{
		Content:  content,
		Filename: filename,
		MimeType: mimeType,
		Size:     info.Size,
	}, resource, nil
}

func (s *ResourceService) load(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	return resource, nil
}

func (s *ResourceService) authorizeRead(ctx context.Context, uid string, resource *models.Resource) error {
	if uid == "" {
		return appErrors.ErrUnauthorized
	}
	if resource.Privacy == models.PrivacyPublic || resource.UploaderUID == uid {
		return nil
	}
	college, err := s.identity.ResolveCollege(ctx, uid)
	if err != nil {
		return err
	}
	if !s.policy.CanRead(resource, uid, college) {
		return appErrors.Clone(appErrors.ErrForbidden, "resource restricted to the uploader's college")
	}
	return nil
}

func (s *ResourceService) validateFile(upload ResourceUpload) error {
	if upload.Content == nil || upload.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	if len(s.mimeSet) > 0 {
		if _, allowed := s.mimeSet[strings.ToLower(upload.MimeType)]; !allowed {
			return appErrors.Clone(appErrors.ErrValidation, "file type not allowed")
		}
	}
	return nil
}

func validateResourceType(raw string) error {
	for _, rt := range models.ResourceTypes {
		if raw == string(rt) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "unknown resource type")
}

func validateYear(year int) error {
	maxYear := time.Now().Year() + 5
	if year < 2000 || year > maxYear {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year must be between 2000 and %d", maxYear))
	}
	return nil
}

// parseTags splits a comma separated tag list, lowercases, trims and
// deduplicates entries.
func parseTags(raw string) (pq.StringArray, error) {
	if strings.TrimSpace(raw) == "" {
		return pq.StringArray{}, nil
	}
	seen := make(map[string]struct{})
	var tags pq.StringArray
	for _, part := range strings.Split(raw, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if len(tag) > 50 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "each tag must be at most 50 characters")
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(tags) > 10 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "maximum 10 tags allowed")
	}
	return tags, nil
}
