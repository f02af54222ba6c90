package services

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/acrylic/tracker/internal/domain/entities"
)

// Normalize joins a to-do stub to its registered course. It reports false,
// and produces nothing, when the course is unknown, the due date is not
// ISO-8601 or the link is not an absolute URL.
func Normalize(stub entities.RemoteAssignmentStub, registry entities.Registry) (entities.Assignment, bool) {
	course, ok := registry.Lookup(stub.CourseID)
	if !ok {
		return entities.Assignment{}, false
	}

	due, err := time.Parse(time.RFC3339, stub.DueAt)
	if err != nil {
		return entities.Assignment{}, false
	}

	link, err := url.Parse(stub.HTMLURL)
	if err != nil || !link.IsAbs() || link.Host == "" {
		return entities.Assignment{}, false
	}

	return entities.Assignment{
		ID:          uuid.New(),
		Name:        stub.Name,
		Due:         due,
		CourseID:    course.Code,
		CourseName:  course.Name,
		CourseOrder: course.Order,
		URL:         link.String(),
		Color:       course.Color,
		Description: PlainText(stub.Description),
	}, true
}

// NormalizeAll normalizes stubs in order and returns how many were dropped.
func NormalizeAll(stubs []entities.RemoteAssignmentStub, registry entities.Registry) ([]entities.Assignment, int) {
	out := make([]entities.Assignment, 0, len(stubs))
	for _, stub := range stubs {
		if a, ok := Normalize(stub, registry); ok {
			out = append(out, a)
		}
	}
	return out, len(stubs) - len(out)
}

// PlainText flattens an HTML fragment to whitespace-normalized text.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}
