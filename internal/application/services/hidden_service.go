package services

import (
	"context"
	"slices"
	"sync"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// FilterHidden drops every assignment whose name and URL match a hidden entry.
func FilterHidden(assignments, hidden []entities.Assignment) []entities.Assignment {
	if len(hidden) == 0 {
		return slices.Clone(assignments)
	}

	type identity struct{ name, url string }
	excluded := make(map[identity]struct{}, len(hidden))
	for _, h := range hidden {
		excluded[identity{h.Name, h.URL}] = struct{}{}
	}

	out := make([]entities.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if _, ok := excluded[identity{a.Name, a.URL}]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

// HiddenService owns the user's hidden-assignment list
type HiddenService struct {
	mu      sync.Mutex
	items   []entities.Assignment
	persist listStore[entities.Assignment]
	logger  *logger.Logger
}

// NewHiddenService creates a new hidden-set service
func NewHiddenService(store ports.Store, appLogger *logger.Logger, m *metrics.Metrics) *HiddenService {
	log := appLogger.WithComponent("hidden")
	return &HiddenService{
		persist: listStore[entities.Assignment]{store: store, key: ports.KeyHidden, logger: log, metrics: m},
		logger:  log,
	}
}

// Load reads the hidden list from the store
func (s *HiddenService) Load(ctx context.Context) error {
	items, err := s.persist.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// List returns a copy of the hidden list in insertion order
func (s *HiddenService) List() []entities.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Contains reports whether an assignment with the same name and URL is hidden
func (s *HiddenService) Contains(a entities.Assignment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(a) >= 0
}

func (s *HiddenService) indexOf(a entities.Assignment) int {
	return slices.IndexFunc(s.items, a.SameAs)
}

// Hide adds the assignment to the hidden list. Hiding an already hidden
// name and URL pair is a no-op.
func (s *HiddenService) Hide(ctx context.Context, a entities.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(a) >= 0 {
		return nil
	}

	next := append(slices.Clone(s.items), a)
	if err := s.persist.save(ctx, next); err != nil {
		return err
	}
	s.items = next

	s.logger.LogUserAction("hide_assignment", map[string]interface{}{"name": a.Name, "url": a.URL})
	return nil
}

// Unhide removes the entry at index from the hidden list
func (s *HiddenService) Unhide(ctx context.Context, index int) (entities.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return entities.Assignment{}, entities.ErrIndexOutOfRange
	}

	removed := s.items[index]
	next := slices.Delete(slices.Clone(s.items), index, index+1)
	if err := s.persist.save(ctx, next); err != nil {
		return entities.Assignment{}, err
	}
	s.items = next

	s.logger.LogUserAction("unhide_assignment", map[string]interface{}{"name": removed.Name, "index": index})
	return removed, nil
}

// Clear empties the hidden list
func (s *HiddenService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.save(ctx, []entities.Assignment{}); err != nil {
		return err
	}
	s.items = nil

	s.logger.LogUserAction("clear_hidden", nil)
	return nil
}

// Filter removes hidden assignments from the given list
func (s *HiddenService) Filter(assignments []entities.Assignment) []entities.Assignment {
	return FilterHidden(assignments, s.List())
}
