package models

import "time"

// Review is one reviewer's rating of a resource. A reviewer holds at
// most one review per resource; re-submitting replaces it.
type Review struct {
	ID           string    `db:"id" json:"id"`
	ResourceID   string    `db:"resource_id" json:"resourceId"`
	ReviewerUID  string    `db:"reviewer_uid" json:"reviewerUid"`
	ReviewerName string    `db:"reviewer_name" json:"reviewerName"`
	Rating       float64   `db:"rating" json:"rating"`
	Comment      string    `db:"comment" json:"comment"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// RatingStats is the recomputed aggregate for a resource.
type RatingStats struct {
	AvgRating   float64 `db:"avg_rating"`
	RatingCount int     `db:"rating_count"`
}
