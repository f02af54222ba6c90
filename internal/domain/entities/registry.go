package entities

// Registry is the ordered list of user courses. It is a value: every
// mutation returns a new Registry and leaves the receiver untouched.
type Registry struct {
	courses []Course
}

// NewRegistry builds a registry from courses, keeping their list order and
// reassigning Order densely.
func NewRegistry(courses []Course) Registry {
	out := make([]Course, len(courses))
	copy(out, courses)
	return Registry{courses: reorder(out)}
}

// Courses returns a copy of the ordered course list.
func (r Registry) Courses() []Course {
	out := make([]Course, len(r.courses))
	copy(out, r.courses)
	return out
}

// Len returns the number of registered courses.
func (r Registry) Len() int {
	return len(r.courses)
}

// Lookup finds a course by its code.
func (r Registry) Lookup(code int) (Course, bool) {
	for _, c := range r.courses {
		if c.Code == code {
			return c, true
		}
	}
	return Course{}, false
}

// Add appends a course at the end of the list.
func (r Registry) Add(course Course) (Registry, error) {
	if _, ok := r.Lookup(course.Code); ok {
		return r, ErrDuplicateCourse
	}
	next := append(r.Courses(), course)
	return Registry{courses: reorder(next)}, nil
}

// Update applies mutate to the course with the given code. The code
// itself cannot be changed through an update.
func (r Registry) Update(code int, mutate func(Course) Course) (Registry, error) {
	next := r.Courses()
	for i, c := range next {
		if c.Code != code {
			continue
		}
		updated := mutate(c)
		updated.Code = c.Code
		next[i] = updated
		return Registry{courses: reorder(next)}, nil
	}
	return r, ErrCourseNotFound
}

// Move relocates the course at index from to index to.
func (r Registry) Move(from, to int) (Registry, error) {
	n := len(r.courses)
	if from < 0 || from >= n || to < 0 || to >= n {
		return r, ErrIndexOutOfRange
	}

	next := r.Courses()
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]Course{moved}, next[to:]...)...)
	return Registry{courses: reorder(next)}, nil
}

// Remove deletes the course with the given code.
func (r Registry) Remove(code int) (Registry, error) {
	next := make([]Course, 0, len(r.courses))
	found := false
	for _, c := range r.courses {
		if c.Code == code {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		return r, ErrCourseNotFound
	}
	return Registry{courses: reorder(next)}, nil
}

// RemoveAll returns an empty registry.
func (r Registry) RemoveAll() Registry {
	return Registry{}
}

func reorder(courses []Course) []Course {
	for i := range courses {
		courses[i].Order = i
	}
	return courses
}
