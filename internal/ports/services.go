package ports

import (
	"context"

	"github.com/acrylic/tracker/internal/domain/entities"
)

// CanvasClient is the read-only LMS API used by the services.
type CanvasClient interface {
	FetchTodos(ctx context.Context, token string, prefixes []string) ([]entities.RemoteAssignmentStub, error)
	FetchCourses(ctx context.Context, token, prefix string) ([]entities.RemoteCourse, error)
	FetchProfile(ctx context.Context, token, prefix string) (*entities.Profile, error)
	FetchAvatar(ctx context.Context, url string) ([]byte, error)
}

// TokenSource yields the Canvas bearer token.
type TokenSource interface {
	CanvasToken(ctx context.Context) (string, error)
}

// Request/Response Types

// CreateCourseRequest registers a course by hand
type CreateCourseRequest struct {
	Code    int             `json:"code" validate:"required,min=1"`
	Name    string          `json:"name" validate:"required,max=200"`
	Teacher *string         `json:"teacher" validate:"omitempty,max=200"`
	Color   *entities.Color `json:"color" validate:"omitempty"`
}

// UpdateCourseRequest edits a course; nil fields are left alone
type UpdateCourseRequest struct {
	Name    *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Teacher *string         `json:"teacher" validate:"omitempty,max=200"`
	Color   *entities.Color `json:"color" validate:"omitempty"`
}

// MoveCourseRequest reorders the registry
type MoveCourseRequest struct {
	From int `json:"from" validate:"gte=0"`
	To   int `json:"to" validate:"gte=0"`
}

// ImportCoursesRequest controls a bulk import from the remote course list
type ImportCoursesRequest struct {
	FavoritesOnly   bool `json:"favorites_only"`
	CurrentTermOnly bool `json:"current_term_only"`
}

// ImportResult reports what an import changed
type ImportResult struct {
	Imported []entities.Course `json:"imported"`
	Skipped  int               `json:"skipped"`
}

// HideRequest identifies an assignment to hide
type HideRequest struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

// GroupedAssignments is the presentation-ready view
type GroupedAssignments struct {
	Mode   entities.SortMode `json:"mode"`
	Groups []GroupView       `json:"groups"`
}

// GroupView is a group plus its rendered header
type GroupView struct {
	Header string `json:"header"`
	entities.Group
}
