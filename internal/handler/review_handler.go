package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notehub/notehub-api/internal/dto"
	"github.com/notehub/notehub-api/internal/models"
	"github.com/notehub/notehub-api/internal/service"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
	"github.com/notehub/notehub-api/pkg/response"
)

type reviewService interface {
	Submit(ctx context.Context, uid, resourceID string, req dto.SubmitReviewRequest) (*service.ReviewSubmission, error)
	List(ctx context.Context, resourceID string) ([]models.Review, error)
}

// ReviewHandler manages review HTTP endpoints.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Submit godoc
// @Summary Add or replace the caller's review of a resource
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.SubmitReviewRequest true "Review"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), claims.UID(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Review, nil, map[string]interface{}{
		"avgRating":   result.Stats.AvgRating,
		"ratingCount": result.Stats.RatingCount,
	})
}

// List godoc
// @Summary List reviews of a resource
// @Tags Reviews
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reviews, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}
