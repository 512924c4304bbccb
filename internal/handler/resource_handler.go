package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/models"
	"github.com/notehub/notehub-api/internal/service"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
	"github.com/notehub/notehub-api/pkg/response"
)

type resourceService interface {
	Upload(ctx context.Context, uid string, meta dto.UploadResourceRequest, upload service.ResourceUpload) (*models.Resource, error)
	Mine(ctx context.Context, uid string, filter models.ResourceFilter) ([]models.Resource, error)
	Browse(ctx context.Context, uid string, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error)
	Get(ctx context.Context, uid, id string) (*models.Resource, error)
	Update(ctx context.Context, uid, id string, req dto.UpdateResourceRequest) (*models.Resource, error)
	Delete(ctx context.Context, uid, id string) (bool, error)
	Download(ctx context.Context, uid, id string) (*service.ResourceDownload, error)
	View(ctx context.Context, uid, id string) (*service.ResourceDownload, error)
}

type exportService interface {
	Render(ctx context.Context, resources []models.Resource, format string) (*service.ExportFile, error)
}

// ResourceHandler manages resource HTTP endpoints.
type ResourceHandler struct {
	service resourceService
	exports exportService
}

// NewResourceHandler constructs the handler.
func NewResourceHandler(service resourceService, exports exportService) *ResourceHandler {
	return &ResourceHandler{service: service, exports: exports}
}

// Upload godoc
// @Summary Upload a resource with its file
// @Tags Resources
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param subject formData string true "Subject"
// @Param semester formData int true "Semester"
// @Param year formData int true "Academic year"
// @Param resource_type formData string true "Resource type"
// @Param description formData string false "Description"
// @Param tags formData string false "Comma separated tags"
// @Param privacy formData string false "Public or Private"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UploadResourceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid resource payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	upload := service.ResourceUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  src,
	}
	resource, err := h.service.Upload(c.Request.Context(), claims.UID(), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// Mine godoc
// @Summary List the caller's uploads
// @Tags Resources
// @Produce json
// @Param type query string false "Resource type filter"
// @Param semester query int false "Semester filter"
// @Param search query string false "Free text search"
// @Success 200 {object} response.Envelope
// @Router /resources/mine [get]
func (h *ResourceHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.ResourceFilter{
		ResourceType: models.ResourceType(strings.TrimSpace(c.Query("type"))),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	if semester := c.Query("semester"); semester != "" {
		if value, err := strconv.Atoi(semester); err == nil {
			filter.Semester = value
		}
	}
	resources, err := h.service.Mine(c.Request.Context(), claims.UID(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, nil)
}

// ExportMine godoc
// @Summary Export the caller's uploads as CSV or PDF
// @Tags Resources
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /resources/mine/export [get]
func (h *ResourceHandler) ExportMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	resources, err := h.service.Mine(c.Request.Context(), claims.UID(), models.ResourceFilter{})
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Render(c.Request.Context(), resources, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Browse godoc
// @Summary Browse resources visible to the caller
// @Tags Resources
// @Produce json
// @Param subject query string false "Subject substring filter"
// @Param branch query string false "Branch filter"
// @Param semester query int false "Semester filter"
// @Param year query int false "Year filter"
// @Param type query string false "Resource type filter"
// @Param privacy query string false "Public or Private"
// @Param search query string false "Free text search"
// @Param sort query string false "latest, popular or rated"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /resources/browse [get]
func (h *ResourceHandler) Browse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var q dto.BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid browse query"))
		return
	}
	filter := models.ResourceFilter{
		Subject:      strings.TrimSpace(q.Subject),
		Branch:       strings.TrimSpace(q.Branch),
		Semester:     q.Semester,
		Year:         q.Year,
		ResourceType: models.ResourceType(strings.TrimSpace(q.Type)),
		Privacy:      models.Privacy(strings.TrimSpace(q.Privacy)),
		Search:       strings.TrimSpace(q.Search),
		SortBy:       strings.TrimSpace(q.Sort),
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	resources, pagination, err := h.service.Browse(c.Request.Context(), claims.UID(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, pagination)
}

// Get godoc
// @Summary Get one resource's metadata
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	resource, err := h.service.Get(c.Request.Context(), claims.UID(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Update godoc
// @Summary Update resource metadata
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.UpdateResourceRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid resource payload"))
		return
	}
	resource, err := h.service.Update(c.Request.Context(), claims.UID(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Delete godoc
// @Summary Delete a resource and its stored file
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	cleaned, err := h.service.Delete(c.Request.Context(), claims.UID(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "resource deleted"}, nil, map[string]interface{}{
		"blobCleanup": cleaned,
	})
}

// Download godoc
// @Summary Download the stored file
// @Tags Resources
// @Produce octet-stream
// @Param id path string true "Resource ID"
// @Success 200 {file} binary
// @Router /resources/{id}/download [get]
func (h *ResourceHandler) Download(c *gin.Context) {
	h.stream(c, false)
}

// View godoc
// @Summary Stream the stored file for inline display
// @Tags Resources
// @Produce octet-stream
// @Param id path string true "Resource ID"
// @Success 200 {file} binary
// @Router /resources/{id}/view [get]
func (h *ResourceHandler) View(c *gin.Context) {
	h.stream(c, true)
}

func (h *ResourceHandler) stream(c *gin.Context, inline bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		result *service.ResourceDownload
		err    error
	)
	if inline {
		result, err = h.service.View(c.Request.Context(), claims.UID(), c.Param("id"))
	} else {
		result, err = h.service.Download(c.Request.Context(), claims.UID(), c.Param("id"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.Content.Close() //nolint:errcheck

	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, result.Size, result.MimeType, result.Content, nil)
}
