package models

import (
	"time"

	"github.com/lib/pq"
)

// Privacy controls who may read a resource.
type Privacy string

const (
	PrivacyPublic  Privacy = "Public"
	PrivacyPrivate Privacy = "Private"
)

// ResourceType categorizes uploaded study material.
type ResourceType string

const (
	ResourceTypeNotes          ResourceType = "Notes"
	ResourceTypeQuestionPapers ResourceType = "Question Papers"
	ResourceTypeSolutions      ResourceType = "Solutions"
	ResourceTypeProjectReports ResourceType = "Project Reports"
	ResourceTypeStudyMaterial  ResourceType = "Study Material"
)

// ResourceTypes lists every accepted category.
var ResourceTypes = []ResourceType{
	ResourceTypeNotes,
	ResourceTypeQuestionPapers,
	ResourceTypeSolutions,
	ResourceTypeProjectReports,
	ResourceTypeStudyMaterial,
}

// Browse sort orders.
const (
	SortLatest  = "latest"
	SortPopular = "popular"
	SortRated   = "rated"
)

// Resource is one shared study material: metadata row plus a blob id
// pointing at the stored file. UploaderCollege is denormalized from the
// uploader's profile at creation time and is authoritative for access
// decisions thereafter.
type Resource struct {
	ID              string         `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	Subject         string         `db:"subject" json:"subject"`
	Branch          string         `db:"branch" json:"branch"`
	Semester        int            `db:"semester" json:"semester"`
	Year            int            `db:"year" json:"year"`
	ResourceType    ResourceType   `db:"resource_type" json:"resourceType"`
	Tags            pq.StringArray `db:"tags" json:"tags"`
	Privacy         Privacy        `db:"privacy" json:"privacy"`
	UploaderUID     string         `db:"uploader_uid" json:"uploaderUid"`
	UploaderName    string         `db:"uploader_name" json:"uploaderName"`
	UploaderCollege string         `db:"uploader_college" json:"uploaderCollege"`
	BlobID          string         `db:"blob_id" json:"-"`
	FileName        string         `db:"file_name" json:"fileName"`
	FileSize        int64          `db:"file_size" json:"fileSize"`
	MimeType        string         `db:"mime_type" json:"mimeType"`
	Views           int64          `db:"views" json:"views"`
	Downloads       int64          `db:"downloads" json:"downloads"`
	AvgRating       float64        `db:"avg_rating" json:"avgRating"`
	RatingCount     int            `db:"rating_count" json:"ratingCount"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// ResourceFilter narrows browse queries. Zero values mean "no
// constraint"; Search matches title, subject, tags and branch. A
// Privacy filter narrows the accessibility clause rather than adding a
// separate constraint.
type ResourceFilter struct {
	Subject      string
	Branch       string
	Semester     int
	Year         int
	ResourceType ResourceType
	Privacy      Privacy
	Search       string
	SortBy       string
	Page         int
	PageSize     int
}
