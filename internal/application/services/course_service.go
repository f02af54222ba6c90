package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// CourseService owns the course registry and its persisted copy. Every
// mutation builds a new registry and saves it exactly once.
type CourseService struct {
	mu       sync.Mutex
	registry entities.Registry
	persist  listStore[entities.Course]
	client   ports.CanvasClient
	tokens   ports.TokenSource
	logger   *logger.Logger
	now      func() time.Time
}

// NewCourseService creates a new course service
func NewCourseService(store ports.Store, client ports.CanvasClient, tokens ports.TokenSource, appLogger *logger.Logger, m *metrics.Metrics) *CourseService {
	log := appLogger.WithComponent("courses")
	return &CourseService{
		persist: listStore[entities.Course]{store: store, key: ports.KeyCourses, logger: log, metrics: m},
		client:  client,
		tokens:  tokens,
		logger:  log,
		now:     time.Now,
	}
}

// Load reads the registry from the store
func (s *CourseService) Load(ctx context.Context) error {
	courses, err := s.persist.load(ctx)
	if err != nil {
		return err
	}

	// stored order is the list order; keep the first of any duplicate code
	registry := entities.NewRegistry(nil)
	for _, c := range courses {
		if next, err := registry.Add(c); err == nil {
			registry = next
		}
	}

	s.mu.Lock()
	s.registry = registry
	s.mu.Unlock()

	s.logger.Debugw("Course registry loaded", "courses", registry.Len())
	return nil
}

// Registry returns the current registry snapshot
func (s *CourseService) Registry() entities.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry
}

// List returns the registered courses in display order
func (s *CourseService) List() []entities.Course {
	return s.Registry().Courses()
}

// Get returns one course by code
func (s *CourseService) Get(code int) (entities.Course, error) {
	c, ok := s.Registry().Lookup(code)
	if !ok {
		return entities.Course{}, entities.ErrCourseNotFound
	}
	return c, nil
}

// apply runs mutate against the registry and commits the result only when
// it was saved.
func (s *CourseService) apply(ctx context.Context, mutate func(entities.Registry) (entities.Registry, error)) (entities.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := mutate(s.registry)
	if err != nil {
		return s.registry, err
	}
	if err := s.persist.save(ctx, next.Courses()); err != nil {
		return s.registry, err
	}
	s.registry = next
	return next, nil
}

// Create registers a course at the end of the list
func (s *CourseService) Create(ctx context.Context, req ports.CreateCourseRequest) (entities.Course, error) {
	course := entities.Course{
		Code:    req.Code,
		Name:    strings.TrimSpace(req.Name),
		Teacher: trimmed(req.Teacher),
	}
	if req.Color != nil {
		if !req.Color.Valid() {
			return entities.Course{}, entities.ErrInvalidColor
		}
		course.Color = *req.Color
	} else {
		course.Color = entities.PaletteColor(s.Registry().Len())
	}

	registry, err := s.apply(ctx, func(r entities.Registry) (entities.Registry, error) {
		return r.Add(course)
	})
	if err != nil {
		return entities.Course{}, fmt.Errorf("create course %d: %w", req.Code, err)
	}

	created, _ := registry.Lookup(course.Code)
	s.logger.LogUserAction("create_course", map[string]interface{}{"code": created.Code, "name": created.Name})
	return created, nil
}

// Update edits a course in place. Later fetches pick up the change;
// already normalized assignments keep their snapshot.
func (s *CourseService) Update(ctx context.Context, code int, req ports.UpdateCourseRequest) (entities.Course, error) {
	if req.Color != nil && !req.Color.Valid() {
		return entities.Course{}, entities.ErrInvalidColor
	}

	registry, err := s.apply(ctx, func(r entities.Registry) (entities.Registry, error) {
		return r.Update(code, func(c entities.Course) entities.Course {
			if req.Name != nil {
				c.Name = strings.TrimSpace(*req.Name)
			}
			if req.Teacher != nil {
				c.Teacher = trimmed(req.Teacher)
			}
			if req.Color != nil {
				c.Color = *req.Color
			}
			return c
		})
	})
	if err != nil {
		return entities.Course{}, fmt.Errorf("update course %d: %w", code, err)
	}

	updated, _ := registry.Lookup(code)
	s.logger.LogUserAction("update_course", map[string]interface{}{"code": code})
	return updated, nil
}

// Move reorders the registry
func (s *CourseService) Move(ctx context.Context, from, to int) ([]entities.Course, error) {
	registry, err := s.apply(ctx, func(r entities.Registry) (entities.Registry, error) {
		return r.Move(from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("move course %d to %d: %w", from, to, err)
	}

	s.logger.LogUserAction("move_course", map[string]interface{}{"from": from, "to": to})
	return registry.Courses(), nil
}

// Delete removes one course
func (s *CourseService) Delete(ctx context.Context, code int) error {
	_, err := s.apply(ctx, func(r entities.Registry) (entities.Registry, error) {
		return r.Remove(code)
	})
	if err != nil {
		return fmt.Errorf("delete course %d: %w", code, err)
	}

	s.logger.LogUserAction("delete_course", map[string]interface{}{"code": code})
	return nil
}

// DeleteAll empties the registry
func (s *CourseService) DeleteAll(ctx context.Context) error {
	_, err := s.apply(ctx, func(r entities.Registry) (entities.Registry, error) {
		return r.RemoveAll(), nil
	})
	if err != nil {
		return fmt.Errorf("delete all courses: %w", err)
	}

	s.logger.LogUserAction("delete_all_courses", nil)
	return nil
}

// Import bulk-registers remote courses from every prefix. Codes already in
// the registry are skipped; imported courses get palette colors and their
// first listed teacher.
func (s *CourseService) Import(ctx context.Context, prefixes []string, req ports.ImportCoursesRequest) (*ports.ImportResult, error) {
	if len(prefixes) == 0 {
		return nil, entities.ErrNoPrefixesConfigured
	}

	token, err := s.tokens.CanvasToken(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := s.fetchRemote(ctx, token, prefixes)
	if err != nil {
		return nil, fmt.Errorf("import courses: %w", err)
	}

	now := s.now()
	result := &ports.ImportResult{Imported: []entities.Course{}}

	_, err = s.apply(ctx, func(r entities.Registry) (entities.Registry, error) {
		next := r
		for _, rc := range remote {
			if req.FavoritesOnly && !rc.IsFavorite {
				result.Skipped++
				continue
			}
			if req.CurrentTermOnly && !rc.Term.Contains(now) {
				result.Skipped++
				continue
			}

			course := entities.Course{
				Code:    rc.ID,
				Name:    courseName(rc),
				Teacher: firstTeacher(rc),
				Color:   entities.PaletteColor(next.Len()),
			}
			added, err := next.Add(course)
			if err != nil {
				result.Skipped++
				continue
			}
			next = added
			imported, _ := next.Lookup(course.Code)
			result.Imported = append(result.Imported, imported)
		}
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("import courses: %w", err)
	}

	s.logger.LogUserAction("import_courses", map[string]interface{}{
		"imported": len(result.Imported),
		"skipped":  result.Skipped,
	})
	return result, nil
}

type remoteCourses struct {
	index   int
	courses []entities.RemoteCourse
}

// fetchRemote lists courses of every prefix concurrently, keeping prefix order
func (s *CourseService) fetchRemote(ctx context.Context, token string, prefixes []string) ([]entities.RemoteCourse, error) {
	p := pool.NewWithResults[remoteCourses]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, prefix := range prefixes {
		i, prefix := i, prefix
		p.Go(func(ctx context.Context) (remoteCourses, error) {
			courses, err := s.client.FetchCourses(ctx, token, prefix)
			return remoteCourses{index: i, courses: courses}, err
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	var remote []entities.RemoteCourse
	for _, r := range results {
		remote = append(remote, r.courses...)
	}
	return remote, nil
}

func courseName(rc entities.RemoteCourse) string {
	if name := strings.TrimSpace(rc.Name); name != "" {
		return name
	}
	return strings.TrimSpace(rc.CourseCode)
}

func firstTeacher(rc entities.RemoteCourse) *string {
	for _, t := range rc.Teachers {
		if name := strings.TrimSpace(t.DisplayName); name != "" {
			return &name
		}
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
