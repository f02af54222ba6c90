package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/acrylic/tracker/internal/domain/entities"
)

// SortAndGroup orders assignments for display and cuts them into sections.
//
// By date: ordered by due time truncated to the minute, then course order;
// sections are runs on the same calendar date in loc. By course: ordered by
// course order, then due time; sections are runs sharing a course order.
// Sorting is stable. Empty input yields no groups.
func SortAndGroup(assignments []entities.Assignment, mode entities.SortMode, loc *time.Location) []entities.Group {
	if len(assignments) == 0 {
		return []entities.Group{}
	}
	if loc == nil {
		loc = time.Local
	}

	sorted := slices.Clone(assignments)
	if mode == entities.SortByCourse {
		slices.SortStableFunc(sorted, byCourse)
		return groupRuns(sorted, mode, func(a, b entities.Assignment) bool {
			return a.CourseOrder == b.CourseOrder
		}, loc)
	}

	slices.SortStableFunc(sorted, byDate)
	return groupRuns(sorted, entities.SortByDate, func(a, b entities.Assignment) bool {
		return sameDay(a.Due, b.Due, loc)
	}, loc)
}

func byDate(a, b entities.Assignment) int {
	if c := a.Due.Truncate(time.Minute).Compare(b.Due.Truncate(time.Minute)); c != 0 {
		return c
	}
	return cmp.Compare(a.CourseOrder, b.CourseOrder)
}

func byCourse(a, b entities.Assignment) int {
	if c := cmp.Compare(a.CourseOrder, b.CourseOrder); c != 0 {
		return c
	}
	return a.Due.Compare(b.Due)
}

// sameDay compares the full calendar date, so the same day-of-year in two
// different years never lands in one section.
func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func groupRuns(sorted []entities.Assignment, mode entities.SortMode, same func(a, b entities.Assignment) bool, loc *time.Location) []entities.Group {
	var groups []entities.Group
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && same(sorted[start], sorted[i]) {
			continue
		}
		groups = append(groups, newGroup(sorted[start:i], mode, loc))
		start = i
	}
	return groups
}

func newGroup(run []entities.Assignment, mode entities.SortMode, loc *time.Location) entities.Group {
	first := run[0]
	g := entities.Group{
		Mode:        mode,
		CourseOrder: first.CourseOrder,
		Assignments: slices.Clone(run),
	}
	if mode == entities.SortByCourse {
		g.CourseID = first.CourseID
		g.CourseName = first.CourseName
	} else {
		day := entities.StartOfDay(first.Due.In(loc))
		g.Day = &day
	}
	return g
}
