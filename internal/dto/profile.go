package dto

// CreateProfileRequest is the payload for registering a profile. The
// avatar, when present, is an inline base64 data URL.
type CreateProfileRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	College  string `json:"college" validate:"required,min=2,max=200"`
	Branch   string `json:"branch" validate:"required,min=2,max=100"`
	Semester int    `json:"semester" validate:"required,min=1,max=12"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
	Avatar   string `json:"avatar" validate:"omitempty"`
}

// UpdateProfileRequest replaces the profile wholesale; every stored
// field takes the submitted value.
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	College  string `json:"college" validate:"required,min=2,max=200"`
	Branch   string `json:"branch" validate:"required,min=2,max=100"`
	Semester int    `json:"semester" validate:"required,min=1,max=12"`
	Bio      string `json:"bio" validate:"omitempty,max=500"`
	Avatar   string `json:"avatar" validate:"omitempty"`
}
