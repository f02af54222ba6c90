package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrylic/tracker/internal/domain/entities"
)

func TestNormalize(t *testing.T) {
	registry := bioCalc()

	tests := []struct {
		name   string
		stub   entities.RemoteAssignmentStub
		wantOK bool
	}{
		{
			name:   "known course",
			stub:   entities.RemoteAssignmentStub{Name: "Lab", DueAt: "2024-01-10T23:59:00Z", CourseID: 1, HTMLURL: "https://x/1"},
			wantOK: true,
		},
		{
			name:   "offset timestamp",
			stub:   entities.RemoteAssignmentStub{Name: "Lab", DueAt: "2024-01-10T18:59:00-05:00", CourseID: 1, HTMLURL: "https://x/1"},
			wantOK: true,
		},
		{name: "unknown course", stub: entities.RemoteAssignmentStub{Name: "Orphan", DueAt: "2024-01-10T10:00:00Z", CourseID: 99, HTMLURL: "https://x/3"}},
		{name: "missing due date", stub: entities.RemoteAssignmentStub{Name: "Lab", CourseID: 1, HTMLURL: "https://x/1"}},
		{name: "bad due date", stub: entities.RemoteAssignmentStub{Name: "Lab", DueAt: "Jan 10", CourseID: 1, HTMLURL: "https://x/1"}},
		{name: "relative url", stub: entities.RemoteAssignmentStub{Name: "Lab", DueAt: "2024-01-10T23:59:00Z", CourseID: 1, HTMLURL: "/courses/1/assignments/1"}},
		{name: "empty url", stub: entities.RemoteAssignmentStub{Name: "Lab", DueAt: "2024-01-10T23:59:00Z", CourseID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.stub, registry)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, entities.Assignment{}, got)
				return
			}

			course, _ := registry.Lookup(tt.stub.CourseID)
			assert.Equal(t, course.Code, got.CourseID)
			assert.Equal(t, course.Name, got.CourseName)
			assert.Equal(t, course.Order, got.CourseOrder)
			assert.Equal(t, course.Color, got.Color)
			assert.Equal(t, tt.stub.Name, got.Name)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.True(t, got.Due.Equal(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)))
		})
	}
}

func TestNormalizeAll_DropsOrphans(t *testing.T) {
	got, dropped := NormalizeAll(bioCalcStubs(), bioCalc())

	assert.Equal(t, 1, dropped)
	require.Len(t, got, 2)
	assert.Equal(t, "Lab", got[0].Name)
	assert.Equal(t, "HW3", got[1].Name)
	for _, a := range got {
		_, ok := bioCalc().Lookup(a.CourseID)
		assert.True(t, ok, "assignment %s has unregistered course %d", a.Name, a.CourseID)
	}
}

func TestNormalizeAll_EmptyRegistry(t *testing.T) {
	got, dropped := NormalizeAll(bioCalcStubs(), entities.NewRegistry(nil))
	assert.Empty(t, got)
	assert.Equal(t, 3, dropped)
}

func TestNormalize_FreshIDs(t *testing.T) {
	stub := bioCalcStubs()[0]
	a, _ := Normalize(stub, bioCalc())
	b, _ := Normalize(stub, bioCalc())
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.SameAs(b))
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "Read chapter 3", want: "Read chapter 3"},
		{name: "markup", in: "<p>Read <b>chapter</b>\n 3</p><p>Submit a PDF</p>", want: "Read chapter 3Submit a PDF"},
		{name: "script removed", in: "<p>Hi</p><script>alert(1)</script>", want: "Hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
