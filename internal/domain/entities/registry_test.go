package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(r Registry) []int {
	var out []int
	for _, c := range r.Courses() {
		out = append(out, c.Code)
	}
	return out
}

func assertDenseOrder(t *testing.T, r Registry) {
	t.Helper()
	for i, c := range r.Courses() {
		assert.Equal(t, i, c.Order, "course %d", c.Code)
	}
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry([]Course{
		{Code: 7, Name: "Bio", Order: 4},
		{Code: 3, Name: "Calc", Order: 9},
	})

	assert.Equal(t, []int{7, 3}, codes(r))
	assertDenseOrder(t, r)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_Courses_ReturnsCopy(t *testing.T) {
	r := NewRegistry([]Course{{Code: 1, Name: "Bio"}})

	courses := r.Courses()
	courses[0].Name = "changed"

	c, ok := r.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Bio", c.Name)
}

func TestRegistry_Add(t *testing.T) {
	r := NewRegistry(nil)

	r1, err := r.Add(Course{Code: 1, Name: "Bio"})
	require.NoError(t, err)
	r2, err := r1.Add(Course{Code: 2, Name: "Calc"})
	require.NoError(t, err)

	assert.Equal(t, 0, r.Len(), "receiver is untouched")
	assert.Equal(t, []int{1, 2}, codes(r2))
	assertDenseOrder(t, r2)

	_, err = r2.Add(Course{Code: 1, Name: "Again"})
	assert.ErrorIs(t, err, ErrDuplicateCourse)
}

func TestRegistry_Update(t *testing.T) {
	r := NewRegistry([]Course{{Code: 1, Name: "Bio"}, {Code: 2, Name: "Calc"}})

	next, err := r.Update(2, func(c Course) Course {
		c.Name = "Calculus"
		c.Code = 99
		c.Order = 50
		return c
	})
	require.NoError(t, err)

	c, ok := next.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, "Calculus", c.Name)
	assert.Equal(t, 1, c.Order)
	_, ok = next.Lookup(99)
	assert.False(t, ok)

	old, _ := r.Lookup(2)
	assert.Equal(t, "Calc", old.Name)

	_, err = r.Update(5, func(c Course) Course { return c })
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRegistry_Move(t *testing.T) {
	base := NewRegistry([]Course{{Code: 1}, {Code: 2}, {Code: 3}, {Code: 4}})

	tests := []struct {
		name     string
		from, to int
		want     []int
		wantErr  error
	}{
		{name: "first to last", from: 0, to: 3, want: []int{2, 3, 4, 1}},
		{name: "last to first", from: 3, to: 0, want: []int{4, 1, 2, 3}},
		{name: "middle down", from: 1, to: 2, want: []int{1, 3, 2, 4}},
		{name: "same index", from: 2, to: 2, want: []int{1, 2, 3, 4}},
		{name: "negative from", from: -1, to: 0, wantErr: ErrIndexOutOfRange},
		{name: "to past end", from: 0, to: 4, wantErr: ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := base.Move(tt.from, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, []int{1, 2, 3, 4}, codes(got))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, codes(got))
			assertDenseOrder(t, got)
			assert.Equal(t, []int{1, 2, 3, 4}, codes(base))
		})
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry([]Course{{Code: 1}, {Code: 2}, {Code: 3}})

	next, err := r.Remove(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, codes(next))
	assertDenseOrder(t, next)

	_, err = next.Remove(2)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	assert.Equal(t, 0, next.RemoveAll().Len())
}
