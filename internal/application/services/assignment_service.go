package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// AssignmentOptions carries the display and fetch preferences
type AssignmentOptions struct {
	Prefixes         []string
	SortMode         entities.SortMode
	ShowLate         bool
	ExactDateHeaders bool
	Location         *time.Location
	WidgetLimit      int
}

// OptionsFromConfig builds AssignmentOptions from loaded configuration
func OptionsFromConfig(cfg *config.Config) (AssignmentOptions, error) {
	mode, err := entities.ParseSortMode(cfg.Display.SortMode)
	if err != nil {
		return AssignmentOptions{}, err
	}
	loc, err := cfg.Display.Location()
	if err != nil {
		return AssignmentOptions{}, fmt.Errorf("display timezone: %w", err)
	}
	return AssignmentOptions{
		Prefixes:         cfg.Canvas.Prefixes,
		SortMode:         mode,
		ShowLate:         cfg.Display.ShowLate,
		ExactDateHeaders: cfg.Display.ExactDateHeaders,
		Location:         loc,
		WidgetLimit:      cfg.Display.WidgetLimit,
	}, nil
}

// AssignmentService runs the fetch, normalize, filter and group pipeline
// shared by every surface.
type AssignmentService struct {
	client  ports.CanvasClient
	tokens  ports.TokenSource
	courses *CourseService
	hidden  *HiddenService
	opts    AssignmentOptions
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu          sync.Mutex
	assignments []entities.Assignment
	fetchedAt   time.Time
	generation  uint64
	cancel      context.CancelFunc
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(client ports.CanvasClient, tokens ports.TokenSource, courses *CourseService, hidden *HiddenService, opts AssignmentOptions, appLogger *logger.Logger, m *metrics.Metrics) *AssignmentService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SortMode == "" {
		opts.SortMode = entities.SortByDate
	}
	return &AssignmentService{
		client:  client,
		tokens:  tokens,
		courses: courses,
		hidden:  hidden,
		opts:    opts,
		logger:  appLogger.WithComponent("assignments"),
		metrics: m,
		now:     time.Now,
	}
}

// Options returns the preferences the service was built with
func (s *AssignmentService) Options() AssignmentOptions {
	return s.opts
}

// Refresh fetches every prefix and replaces the current assignment list.
// Starting a refresh cancels the one in flight; a refresh that finishes
// after a newer one started returns ErrStaleRefresh and changes nothing.
func (s *AssignmentService) Refresh(ctx context.Context) ([]entities.Assignment, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	assignments, dropped, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debugw("Discarding superseded refresh", "generation", gen, "current", s.generation)
		return nil, entities.ErrStaleRefresh
	}
	s.cancel = nil
	if err != nil {
		s.logger.Warnw("Assignment refresh failed", "error", err)
		return nil, err
	}

	s.assignments = assignments
	s.fetchedAt = s.now()
	s.logger.Infow("Assignments refreshed",
		"assignments", len(assignments),
		"dropped", dropped,
		"prefixes", len(s.opts.Prefixes),
	)
	return slices.Clone(assignments), nil
}

func (s *AssignmentService) fetch(ctx context.Context) ([]entities.Assignment, int, error) {
	if len(s.opts.Prefixes) == 0 {
		return nil, 0, entities.ErrNoPrefixesConfigured
	}

	token, err := s.tokens.CanvasToken(ctx)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	stubs, err := s.client.FetchTodos(ctx, token, s.opts.Prefixes)
	s.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, 0, err
	}

	assignments, dropped := NormalizeAll(stubs, s.courses.Registry())
	s.metrics.DroppedStubs.Add(float64(dropped))
	return assignments, dropped, nil
}

// Current returns the last refreshed list and when it was fetched
func (s *AssignmentService) Current() ([]entities.Assignment, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.assignments), s.fetchedAt
}

// Find returns the current assignment with the given name and URL
func (s *AssignmentService) Find(name, url string) (entities.Assignment, bool) {
	current, _ := s.Current()
	target := entities.Assignment{Name: name, URL: url}
	for _, a := range current {
		if a.SameAs(target) {
			return a, true
		}
	}
	return entities.Assignment{}, false
}

// Visible returns current assignments minus hidden and, unless enabled,
// late ones.
func (s *AssignmentService) Visible() []entities.Assignment {
	current, _ := s.Current()
	visible := s.hidden.Filter(current)
	if s.opts.ShowLate {
		return visible
	}

	now := s.now()
	return slices.DeleteFunc(visible, func(a entities.Assignment) bool {
		return a.IsLate(now)
	})
}

// Grouped returns the visible assignments sorted and sectioned by mode
func (s *AssignmentService) Grouped(mode entities.SortMode) ports.GroupedAssignments {
	if mode == "" {
		mode = s.opts.SortMode
	}

	now := s.now()
	groups := SortAndGroup(s.Visible(), mode, s.opts.Location)
	views := make([]ports.GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, ports.GroupView{
			Header: g.Header(now, s.opts.ExactDateHeaders),
			Group:  g,
		})
	}
	return ports.GroupedAssignments{Mode: mode, Groups: views}
}

// Snapshot returns the next limit visible assignments in date order, the
// compact view used by the widget surface.
func (s *AssignmentService) Snapshot(limit int) []entities.Assignment {
	if limit <= 0 {
		limit = s.opts.WidgetLimit
	}

	var out []entities.Assignment
	for _, g := range SortAndGroup(s.Visible(), entities.SortByDate, s.opts.Location) {
		for _, a := range g.Assignments {
			if limit > 0 && len(out) >= limit {
				return out
			}
			out = append(out, a)
		}
	}
	if out == nil {
		out = []entities.Assignment{}
	}
	return out
}
