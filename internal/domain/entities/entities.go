package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotAuthorized        = errors.New("not authorized")
	ErrUnknownPrefix        = errors.New("unknown institution prefix")
	ErrLoadFailed           = errors.New("load failed")
	ErrNoPrefixesConfigured = errors.New("no institution prefixes configured")
	ErrBadURL               = errors.New("bad url")
	ErrCourseNotFound       = errors.New("course not found")
	ErrDuplicateCourse      = errors.New("course code already registered")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrKeyNotFound          = errors.New("key not found")
	ErrStaleRefresh         = errors.New("refresh superseded by a newer one")
	ErrNoToken              = errors.New("no canvas token configured")
	ErrInvalidColor         = errors.New("invalid color")
)

// SortMode selects how assignments are ordered and sectioned.
type SortMode string

const (
	SortByDate   SortMode = "date"
	SortByCourse SortMode = "course"
)

// ParseSortMode accepts "date" or "course" (case-insensitive).
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortByDate:
		return SortByDate, nil
	case SortByCourse:
		return SortByCourse, nil
	}
	return "", fmt.Errorf("invalid sort mode %q", s)
}

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// ValidPrefix reports whether prefix is a single DNS label, the only form
// that can be substituted into an endpoint template without changing its host.
func ValidPrefix(prefix string) bool {
	return prefixPattern.MatchString(prefix)
}

// Course is a user-defined course record. Values are never shared by
// reference: the Registry hands out copies.
type Course struct {
	Code    int     `json:"code"`
	Name    string  `json:"name"`
	Teacher *string `json:"teacher,omitempty"`
	Order   int     `json:"order"`
	Color   Color   `json:"color"`
}

// Assignment is a normalized to-do entry. Course attributes are copied at
// normalization time.
type Assignment struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Due         time.Time `json:"due"`
	CourseID    int       `json:"course_id"`
	CourseName  string    `json:"course_name"`
	CourseOrder int       `json:"course_order"`
	URL         string    `json:"url"`
	Color       Color     `json:"color"`
	Description string    `json:"description,omitempty"`
}

// SameAs reports whether two assignments are the same hidden entity.
func (a Assignment) SameAs(other Assignment) bool {
	return a.Name == other.Name && a.URL == other.URL
}

// IsLate reports whether the assignment was due before now.
func (a Assignment) IsLate(now time.Time) bool {
	return a.Due.Before(now)
}

// RemoteAssignmentStub is the assignment part of a Canvas to-do item.
type RemoteAssignmentStub struct {
	Name        string `json:"name"`
	DueAt       string `json:"due_at"`
	CourseID    int    `json:"course_id"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
}

// TodoItem is one entry of /users/self/todo.
type TodoItem struct {
	Type       string                `json:"type"`
	Assignment *RemoteAssignmentStub `json:"assignment"`
}

// RemoteTerm is the enrollment term included with a remote course.
type RemoteTerm struct {
	Name    string     `json:"name"`
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
}

// Contains reports whether t falls inside the term. Open bounds always match.
func (t *RemoteTerm) Contains(at time.Time) bool {
	if t == nil {
		return true
	}
	if t.StartAt != nil && at.Before(*t.StartAt) {
		return false
	}
	if t.EndAt != nil && at.After(*t.EndAt) {
		return false
	}
	return true
}

// RemoteTeacher is a teacher listed on a remote course.
type RemoteTeacher struct {
	ID             int    `json:"id"`
	DisplayName    string `json:"display_name"`
	AvatarImageURL string `json:"avatar_image_url"`
}

// RemoteCourse is one entry of /api/v1/courses.
type RemoteCourse struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	CourseCode string          `json:"course_code"`
	IsFavorite bool            `json:"is_favorite"`
	Term       *RemoteTerm     `json:"term"`
	Teachers   []RemoteTeacher `json:"teachers"`
}

// Profile is the authenticated user's Canvas profile.
type Profile struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name"`
	PrimaryEmail string `json:"primary_email"`
	AvatarURL    string `json:"avatar_url"`
}

// Group is a contiguous section of sorted assignments. Day is set only
// for date groups.
type Group struct {
	Mode        SortMode     `json:"mode"`
	Day         *time.Time   `json:"day,omitempty"`
	CourseID    int          `json:"course_id,omitempty"`
	CourseName  string       `json:"course_name,omitempty"`
	CourseOrder int          `json:"course_order"`
	Assignments []Assignment `json:"assignments"`
}

// Header returns the section title for the group. Date groups read
// "Today", "Tomorrow", a weekday name within the coming week, or the full
// date when exact is set.
func (g Group) Header(now time.Time, exact bool) string {
	if g.Mode == SortByCourse || g.Day == nil {
		return g.CourseName
	}

	day := *g.Day
	if exact {
		return day.Format("Monday, January 2, 2006")
	}

	today := StartOfDay(now.In(day.Location()))
	switch days := DaysBetween(today, day); {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1 && days < 7:
		return day.Weekday().String()
	}
	return day.Format("January 2, 2006")
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b, both taken at midnight.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
