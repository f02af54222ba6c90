package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/ports"
)

func strPtr(s string) *string { return &s }

// failingStore wraps a store and fails every Set once armed
type failingStore struct {
	ports.Store
	fail bool
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func TestCourseService_CreateAndReload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := newTestCourseService(t, store, &fakeCanvas{})
	require.NoError(t, svc.Load(ctx))

	bio, err := svc.Create(ctx, ports.CreateCourseRequest{Code: 1, Name: " Bio ", Teacher: strPtr("Dr. Wu")})
	require.NoError(t, err)
	assert.Equal(t, "Bio", bio.Name)
	assert.Equal(t, 0, bio.Order)
	assert.Equal(t, entities.PaletteColor(0), bio.Color)

	calc, err := svc.Create(ctx, ports.CreateCourseRequest{Code: 2, Name: "Calc", Color: &entities.Color{R: 1, A: 1}})
	require.NoError(t, err)
	assert.Equal(t, 1, calc.Order)
	assert.Equal(t, entities.Color{R: 1, A: 1}, calc.Color)

	_, err = svc.Create(ctx, ports.CreateCourseRequest{Code: 1, Name: "Dup"})
	assert.ErrorIs(t, err, entities.ErrDuplicateCourse)

	_, err = svc.Create(ctx, ports.CreateCourseRequest{Code: 3, Name: "Bad", Color: &entities.Color{R: 2}})
	assert.ErrorIs(t, err, entities.ErrInvalidColor)

	reloaded := newTestCourseService(t, store, &fakeCanvas{})
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, svc.List(), reloaded.List())
}

func TestCourseService_UpdateMoveDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := newTestCourseService(t, store, &fakeCanvas{})
	require.NoError(t, svc.Load(ctx))
	for i, name := range []string{"Bio", "Calc", "Chem"} {
		_, err := svc.Create(ctx, ports.CreateCourseRequest{Code: i + 1, Name: name})
		require.NoError(t, err)
	}

	updated, err := svc.Update(ctx, 2, ports.UpdateCourseRequest{Name: strPtr("Calculus"), Teacher: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Calculus", updated.Name)
	assert.Nil(t, updated.Teacher)

	_, err = svc.Update(ctx, 42, ports.UpdateCourseRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, entities.ErrCourseNotFound)

	courses, err := svc.Move(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{courses[0].Code, courses[1].Code, courses[2].Code})
	for i, c := range courses {
		assert.Equal(t, i, c.Order)
	}

	_, err = svc.Move(ctx, 0, 3)
	assert.ErrorIs(t, err, entities.ErrIndexOutOfRange)

	require.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 1), entities.ErrCourseNotFound)

	c, err := svc.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Order)

	reloaded := newTestCourseService(t, store, &fakeCanvas{})
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, svc.List(), reloaded.List())

	require.NoError(t, svc.DeleteAll(ctx))
	assert.Empty(t, svc.List())
}

func TestCourseService_FailedSaveKeepsRegistry(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: newTestStore(t)}
	svc := newTestCourseService(t, store, &fakeCanvas{})
	require.NoError(t, svc.Load(ctx))
	_, err := svc.Create(ctx, ports.CreateCourseRequest{Code: 1, Name: "Bio"})
	require.NoError(t, err)

	store.fail = true
	_, err = svc.Create(ctx, ports.CreateCourseRequest{Code: 2, Name: "Calc"})
	assert.Error(t, err)
	assert.Len(t, svc.List(), 1)
}

func TestCourseService_LoadDropsDuplicateCodes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	blob := []byte(`[{"code":1,"name":"Bio","order":3},{"code":1,"name":"Bio again"},{"code":2,"name":"Calc","order":0}]`)
	require.NoError(t, store.Set(ctx, ports.KeyCourses, blob))

	svc := newTestCourseService(t, store, &fakeCanvas{})
	require.NoError(t, svc.Load(ctx))

	courses := svc.List()
	require.Len(t, courses, 2)
	assert.Equal(t, "Bio", courses[0].Name)
	assert.Equal(t, 0, courses[0].Order)
	assert.Equal(t, 1, courses[1].Order)
}

func TestCourseService_Import(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)

	client := &fakeCanvas{courses: map[string][]entities.RemoteCourse{
		"uni": {
			{ID: 1, Name: "Bio", IsFavorite: true, Teachers: []entities.RemoteTeacher{{DisplayName: "Dr. Wu"}}},
			{ID: 2, Name: "", CourseCode: "CALC-101"},
			{ID: 3, Name: "Old", IsFavorite: true, Term: &entities.RemoteTerm{StartAt: &past, EndAt: &pastEnd}},
		},
		"college": {
			{ID: 4, Name: "Chem", IsFavorite: true},
		},
	}}

	tests := []struct {
		name     string
		req      ports.ImportCoursesRequest
		existing []int
		want     []int
		skipped  int
	}{
		{name: "all", want: []int{1, 2, 3, 4}},
		{name: "favorites", req: ports.ImportCoursesRequest{FavoritesOnly: true}, want: []int{1, 3, 4}, skipped: 1},
		{name: "current term", req: ports.ImportCoursesRequest{CurrentTermOnly: true}, want: []int{1, 2, 4}, skipped: 1},
		{name: "already registered", existing: []int{2}, want: []int{1, 3, 4}, skipped: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestCourseService(t, newTestStore(t), client)
			svc.now = func() time.Time { return now }
			require.NoError(t, svc.Load(ctx))
			for _, code := range tt.existing {
				_, err := svc.Create(ctx, ports.CreateCourseRequest{Code: code, Name: "Mine"})
				require.NoError(t, err)
			}

			result, err := svc.Import(ctx, []string{"uni", "college"}, tt.req)
			require.NoError(t, err)

			var got []int
			for _, c := range result.Imported {
				got = append(got, c.Code)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.skipped, result.Skipped)
			assert.Len(t, svc.List(), len(tt.existing)+len(tt.want))
		})
	}

	t.Run("names and teachers", func(t *testing.T) {
		svc := newTestCourseService(t, newTestStore(t), client)
		require.NoError(t, svc.Load(ctx))
		_, err := svc.Import(ctx, []string{"uni"}, ports.ImportCoursesRequest{})
		require.NoError(t, err)

		bio, err := svc.Get(1)
		require.NoError(t, err)
		require.NotNil(t, bio.Teacher)
		assert.Equal(t, "Dr. Wu", *bio.Teacher)

		calc, err := svc.Get(2)
		require.NoError(t, err)
		assert.Equal(t, "CALC-101", calc.Name)
		assert.Nil(t, calc.Teacher)
		assert.Equal(t, entities.PaletteColor(1), calc.Color)
	})
}

func TestCourseService_ImportErrors(t *testing.T) {
	ctx := context.Background()

	svc := newTestCourseService(t, newTestStore(t), &fakeCanvas{})
	_, err := svc.Import(ctx, nil, ports.ImportCoursesRequest{})
	assert.ErrorIs(t, err, entities.ErrNoPrefixesConfigured)

	failing := &fakeCanvas{err: entities.ErrNotAuthorized}
	svc = newTestCourseService(t, newTestStore(t), failing)
	require.NoError(t, svc.Load(ctx))
	_, err = svc.Import(ctx, []string{"uni"}, ports.ImportCoursesRequest{})
	assert.ErrorIs(t, err, entities.ErrNotAuthorized)
	assert.Empty(t, svc.List())
}
