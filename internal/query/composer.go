package query

import (
	"strings"

	"github.com/notehub/notehub-api/internal/models"
)

// Compose builds the browse predicate for a viewer. The result is the
// conjunction of three independent clauses:
//
//	accessibility: public, or private from the viewer's college
//	field filters: subject, branch, semester, year, resource type
//	free-text search: title, subject, tags or branch
//
// Each clause is grouped on its own, so adding a filter can never widen
// the set of resources the viewer is allowed to see. An explicit
// privacy filter narrows the accessibility clause to one of its
// branches instead of being conjoined as a sibling.
func Compose(viewerCollege string, f models.ResourceFilter) Predicate {
	parts := []Predicate{accessibility(viewerCollege, f.Privacy)}

	if filters := fieldFilters(f); len(filters) > 0 {
		parts = append(parts, And(filters...))
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		parts = append(parts, Or(
			Contains{Column: "title", Value: search},
			Contains{Column: "subject", Value: search},
			TagsContain{Column: "tags", Value: search},
			Contains{Column: "branch", Value: search},
		))
	}

	return And(parts...)
}

// Accessibility is the visibility clause on its own: public resources,
// plus private ones uploaded from the viewer's college. A viewer with
// no known college sees only public resources.
func Accessibility(viewerCollege string) Predicate {
	return accessibility(viewerCollege, "")
}

func accessibility(viewerCollege string, privacy models.Privacy) Predicate {
	public := Eq{Column: "privacy", Value: string(models.PrivacyPublic)}
	private := And(
		Eq{Column: "privacy", Value: string(models.PrivacyPrivate)},
		EqFold{Column: "uploader_college", Value: viewerCollege},
	)

	switch privacy {
	case models.PrivacyPublic:
		return public
	case models.PrivacyPrivate:
		return private
	}

	if strings.TrimSpace(viewerCollege) == "" {
		return public
	}
	return Or(public, private)
}

func fieldFilters(f models.ResourceFilter) []Predicate {
	var parts []Predicate
	if f.Subject != "" {
		parts = append(parts, Contains{Column: "subject", Value: f.Subject})
	}
	if f.Branch != "" {
		parts = append(parts, Eq{Column: "branch", Value: f.Branch})
	}
	if f.Semester > 0 {
		parts = append(parts, Eq{Column: "semester", Value: f.Semester})
	}
	if f.Year > 0 {
		parts = append(parts, Eq{Column: "year", Value: f.Year})
	}
	if f.ResourceType != "" {
		parts = append(parts, Eq{Column: "resource_type", Value: string(f.ResourceType)})
	}
	return parts
}

// OrderBy maps a sort selector to a deterministic ORDER BY clause.
// Unknown selectors fall back to latest.
func OrderBy(sortBy string) string {
	switch sortBy {
	case models.SortPopular:
		return "downloads DESC, views DESC"
	case models.SortRated:
		return "avg_rating DESC, created_at DESC"
	case models.SortLatest:
		return "created_at DESC"
	default:
		return "created_at DESC"
	}
}
