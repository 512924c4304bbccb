package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/middleware"
	"github.com/notehub/notehub-api/internal/models"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
)

type profileServiceMock struct {
	createResp *models.Profile
	createErr  error
	getResp    *models.Profile
	getErr     error
	updateResp *models.Profile
	updateErr  error
	deleteErr  error
	lastUID    string
	lastCreate dto.CreateProfileRequest
}

func (m *profileServiceMock) Create(ctx context.Context, uid string, req dto.CreateProfileRequest) (*models.Profile, error) {
	m.lastUID = uid
	m.lastCreate = req
	return m.createResp, m.createErr
}

func (m *profileServiceMock) Get(ctx context.Context, uid string) (*models.Profile, error) {
	m.lastUID = uid
	return m.getResp, m.getErr
}

func (m *profileServiceMock) Update(ctx context.Context, uid string, req dto.UpdateProfileRequest) (*models.Profile, error) {
	m.lastUID = uid
	return m.updateResp, m.updateErr
}

func (m *profileServiceMock) Delete(ctx context.Context, uid string) error {
	m.lastUID = uid
	return m.deleteErr
}

func testClaims(uid string) *models.JWTClaims {
	return &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: uid}}
}

func TestProfileHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &profileServiceMock{createResp: &models.Profile{ID: "prof-1", UID: "uid-1", College: "IIT Bombay"}}
	handler := NewProfileHandler(mockSvc)

	body, _ := json.Marshal(dto.CreateProfileRequest{
		Name: "Asha Rao", Email: "asha@example.edu", College: "IIT Bombay", Branch: "CSE", Semester: 5,
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/profile", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "uid-1", mockSvc.lastUID)
	assert.Equal(t, "IIT Bombay", mockSvc.lastCreate.College)
}

func TestProfileHandlerCreateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &profileServiceMock{createErr: appErrors.ErrConflict}
	handler := NewProfileHandler(mockSvc)

	body, _ := json.Marshal(dto.CreateProfileRequest{
		Name: "Asha Rao", Email: "asha@example.edu", College: "IIT Bombay", Branch: "CSE", Semester: 5,
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/profile", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProfileHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfileHandler(&profileServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
	c.Request = req

	handler.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfileHandler(&profileServiceMock{getErr: appErrors.ErrNotFound})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileHandlerUpdateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfileHandler(&profileServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/profile", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &profileServiceMock{}
	handler := NewProfileHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/profile", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-1", mockSvc.lastUID)
}

func TestProfileHandlerDeleteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfileHandler(&profileServiceMock{deleteErr: appErrors.ErrNotFound})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/profile", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, testClaims("uid-1"))

	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
