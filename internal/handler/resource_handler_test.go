package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/middleware"
	"github.com/notehub/notehub-api/internal/models"
	"github.com/notehub/notehub-api/internal/service"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
	"github.com/notehub/notehub-api/pkg/response"
)

type resourceServiceMock struct {
	uploadResp   *models.Resource
	uploadErr    error
	mineResp     []models.Resource
	mineErr      error
	browseResp   []models.Resource
	browsePage   *models.Pagination
	browseErr    error
	getResp      *models.Resource
	getErr       error
	updateResp   *models.Resource
	updateErr    error
	deleteClean  bool
	deleteErr    error
	downloadResp *service.ResourceDownload
	downloadErr  error
	viewResp     *service.ResourceDownload
	viewErr      error

	lastUID    string
	lastMeta   dto.UploadResourceRequest
	lastUpload service.ResourceUpload
	lastFilter models.ResourceFilter
	viewCalled bool
	dlCalled   bool
}

func (m *resourceServiceMock) Upload(ctx context.Context, uid string, meta dto.UploadResourceRequest, upload service.ResourceUpload) (*models.Resource, error) {
	m.lastUID = uid
	m.lastMeta = meta
	m.lastUpload = upload
	return m.uploadResp, m.uploadErr
}

func (m *resourceServiceMock) Mine(ctx context.Context, uid string, filter models.ResourceFilter) ([]models.Resource, error) {
	m.lastUID = uid
	m.lastFilter = filter
	return m.mineResp, m.mineErr
}

func (m *resourceServiceMock) Browse(ctx context.Context, uid string, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	m.lastUID = uid
	m.lastFilter = filter
	return m.browseResp, m.browsePage, m.browseErr
}

func (m *resourceServiceMock) Get(ctx context.Context, uid, id string) (*models.Resource, error) {
	m.lastUID = uid
	return m.getResp, m.getErr
}

func (m *resourceServiceMock) Update(ctx context.Context, uid, id string, req dto.UpdateResourceRequest) (*models.Resource, error) {
	m.lastUID = uid
	return m.updateResp, m.updateErr
}

func (m *resourceServiceMock) Delete(ctx context.Context, uid, id string) (bool, error) {
	m.lastUID = uid
	return m.deleteClean, m.deleteErr
}

func (m *resourceServiceMock) Download(ctx context.Context, uid, id string) (*service.ResourceDownload, error) {
	m.dlCalled = true
	return m.downloadResp, m.downloadErr
}

func (m *resourceServiceMock) View(ctx context.Context, uid, id string) (*service.ResourceDownload, error) {
	m.viewCalled = true
	return m.viewResp, m.viewErr
}

func multipartUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Signals and Systems"))
	require.NoError(t, writer.WriteField("subject", "ECE"))
	require.NoError(t, writer.WriteField("semester", "4"))
	require.NoError(t, writer.WriteField("year", "2024"))
	require.NoError(t, writer.WriteField("resource_type", "Notes"))
	require.NoError(t, writer.WriteField("privacy", "Public"))
	part, err := writer.CreateFormFile("file", "signals.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 notes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestResourceHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{uploadResp: &models.Resource{ID: "res-1", Title: "Signals and Systems"}}
	handler := NewResourceHandler(mockSvc, nil)

	body, contentType := multipartUpload(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Upload(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "uid-1", mockSvc.lastUID)
	assert.Equal(t, "Signals and Systems", mockSvc.lastMeta.Title)
	assert.Equal(t, "signals.pdf", mockSvc.lastUpload.Filename)
}

func TestResourceHandlerUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewResourceHandler(&resourceServiceMock{}, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "No file here"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandlerBrowse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{
		browseResp: []models.Resource{{ID: "res-1"}},
		browsePage: &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1},
	}
	handler := NewResourceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/browse?subject=Math&sort=popular&page=1", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Browse(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Math", mockSvc.lastFilter.Subject)
	assert.Equal(t, "popular", mockSvc.lastFilter.SortBy)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestResourceHandlerBrowseProfileRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{browseErr: appErrors.ErrProfileRequired}
	handler := NewResourceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/browse", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Browse(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "PROFILE_REQUIRED", envelope.Error.Code)
}

func TestResourceHandlerDownloadSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{downloadResp: &service.ResourceDownload{
		Content:  io.NopCloser(strings.NewReader("file-bytes")),
		Filename: "signals.pdf",
		MimeType: "application/pdf",
		Size:     10,
	}}
	handler := NewResourceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/res-1/download", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.dlCalled)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "file-bytes", w.Body.String())
}

func TestResourceHandlerViewStreamsInline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{viewResp: &service.ResourceDownload{
		Content:  io.NopCloser(strings.NewReader("file-bytes")),
		Filename: "signals.pdf",
		MimeType: "application/pdf",
		Size:     10,
	}}
	handler := NewResourceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/res-1/view", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.View(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.viewCalled)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "inline")
}

func TestResourceHandlerDeleteReportsCleanup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{deleteClean: false}
	handler := NewResourceHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/resources/res-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, false, envelope.Meta["blobCleanup"])
}

func TestResourceHandlerExportMine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resourceServiceMock{mineResp: []models.Resource{{ID: "res-1", Title: "Calc"}}}
	handler := NewResourceHandler(mockSvc, service.NewExportService(nil))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/mine/export?format=csv", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.ExportMine(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "Calc")
}
