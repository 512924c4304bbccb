package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

type reviewServiceMock struct {
	submitResp *service.ReviewSubmission
	submitErr  error
	listResp   []models.Review
	listErr    error

	lastUID      string
	lastResource string
	lastReq      dto.SubmitReviewRequest
}

func (m *reviewServiceMock) Submit(ctx context.Context, uid, resourceID string, req dto.SubmitReviewRequest) (*service.ReviewSubmission, error) {
	m.lastUID = uid
	m.lastResource = resourceID
	m.lastReq = req
	return m.submitResp, m.submitErr
}

func (m *reviewServiceMock) List(ctx context.Context, resourceID string) ([]models.Review, error) {
	m.lastResource = resourceID
	return m.listResp, m.listErr
}

func TestReviewHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{submitResp: &service.ReviewSubmission{
		Review: &models.Review{ID: "rev-1", ResourceID: "res-1", Rating: 4},
		Stats:  models.RatingStats{AvgRating: 4.5, RatingCount: 2},
	}}
	handler := NewReviewHandler(mockSvc)

	body, _ := json.Marshal(dto.SubmitReviewRequest{Rating: 4, Comment: "solid notes"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/res-1/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Submit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-1", mockSvc.lastUID)
	assert.Equal(t, "res-1", mockSvc.lastResource)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 4.5, envelope.Meta["avgRating"])
	assert.Equal(t, float64(2), envelope.Meta["ratingCount"])
}

func TestReviewHandlerSubmitUnknownResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReviewHandler(&reviewServiceMock{submitErr: appErrors.Clone(appErrors.ErrNotFound, "resource not found")})

	body, _ := json.Marshal(dto.SubmitReviewRequest{Rating: 5})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/missing/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Submit(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewHandlerSubmitInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReviewHandler(&reviewServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/resources/res-1/reviews", bytes.NewBufferString(`{"rating":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reviewServiceMock{listResp: []models.Review{
		{ID: "rev-2", Rating: 5, ReviewerName: "Asha Rao"},
		{ID: "rev-1", Rating: 3, ReviewerName: "Anonymous"},
	}}
	handler := NewReviewHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/res-1/reviews", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "res-1", mockSvc.lastResource)
	assert.Contains(t, w.Body.String(), "Anonymous")
}

func TestReviewHandlerListRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReviewHandler(&reviewServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/resources/res-1/reviews", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
