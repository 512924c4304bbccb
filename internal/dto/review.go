package dto

// SubmitReviewRequest rates a resource. One review per reviewer per
// resource; submitting again replaces the earlier one.
type SubmitReviewRequest struct {
	Rating  float64 `json:"rating" validate:"required,min=1,max=5"`
	Comment string  `json:"comment" validate:"omitempty,max=500"`
}
