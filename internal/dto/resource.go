package dto

// UploadResourceRequest contains metadata submitted alongside a file
// upload. Tags arrive comma separated; year's upper bound depends on
// the current date and is enforced in the service layer, as is
// resource type membership.
type UploadResourceRequest struct {
	Title        string `form:"title" validate:"required,min=3,max=200"`
	Subject      string `form:"subject" validate:"required,min=2,max=100"`
	Branch       string `form:"branch" validate:"omitempty,min=2,max=100"`
	Semester     int    `form:"semester" validate:"required,min=1,max=12"`
	Year         int    `form:"year" validate:"required,min=2000"`
	ResourceType string `form:"resource_type" validate:"required"`
	Description  string `form:"description" validate:"omitempty,max=1000"`
	Tags         string `form:"tags"`
	Privacy      string `form:"privacy" validate:"omitempty,oneof=Public Private"`
}

// UpdateResourceRequest carries partial metadata changes. The stored
// file is immutable; replacing content means a new upload.
type UpdateResourceRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Subject      *string  `json:"subject" validate:"omitempty,min=2,max=100"`
	Branch       *string  `json:"branch" validate:"omitempty,min=2,max=100"`
	Semester     *int     `json:"semester" validate:"omitempty,min=1,max=12"`
	Year         *int     `json:"year" validate:"omitempty,min=2000"`
	ResourceType *string  `json:"resource_type"`
	Description  *string  `json:"description" validate:"omitempty,max=1000"`
	Tags         []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	Privacy      *string  `json:"privacy" validate:"omitempty,oneof=Public Private"`
}

// BrowseQuery captures browse endpoint query parameters. A privacy
// value narrows results to that visibility class; private still only
// surfaces same-college uploads.
type BrowseQuery struct {
	Subject  string `form:"subject"`
	Branch   string `form:"branch"`
	Semester int    `form:"semester"`
	Year     int    `form:"year"`
	Type     string `form:"type"`
	Privacy  string `form:"privacy" binding:"omitempty,oneof=Public Private"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
