package service

import (
	"strings"

	"github.com/notehub/notehub-api/internal/models"
)

// normalizeCollege folds case and trims whitespace so college names
// compare the way humans read them.
func normalizeCollege(college string) string {
	return strings.ToLower(strings.TrimSpace(college))
}

// AccessPolicy decides whether a viewer may read a resource. The
// decision uses the college denormalized onto the resource row, never a
// live lookup of the uploader's profile.
type AccessPolicy struct{}

// CanRead reports whether a viewer with the given college may read the
// resource. Owners always pass through the college match since their
// resources carry their own college.
func (AccessPolicy) CanRead(resource *models.Resource, viewerUID, viewerCollege string) bool {
	if resource == nil {
		return false
	}
	if resource.Privacy == models.PrivacyPublic {
		return true
	}
	if viewerUID != "" && viewerUID == resource.UploaderUID {
		return true
	}
	viewer := normalizeCollege(viewerCollege)
	return viewer != "" && viewer == normalizeCollege(resource.UploaderCollege)
}
