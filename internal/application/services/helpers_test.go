package services

import (
	"context"
	"sync"
	"testing"

	"github.com/acrylic/tracker/internal/adapters/repository"
	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// fakeCanvas is an in-memory ports.CanvasClient
type fakeCanvas struct {
	mu        sync.Mutex
	todos     []entities.RemoteAssignmentStub
	courses   map[string][]entities.RemoteCourse
	profile   *entities.Profile
	avatar    []byte
	avatarErr error
	err       error
	calls     int
	lastTok   string
	fetchHook func(ctx context.Context) error
}

func (f *fakeCanvas) FetchTodos(ctx context.Context, token string, prefixes []string) ([]entities.RemoteAssignmentStub, error) {
	f.mu.Lock()
	f.calls++
	f.lastTok = token
	hook := f.fetchHook
	todos, err := f.todos, f.err
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	return todos, nil
}

func (f *fakeCanvas) FetchCourses(ctx context.Context, token, prefix string) ([]entities.RemoteCourse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses[prefix], nil
}

func (f *fakeCanvas) FetchProfile(ctx context.Context, token, prefix string) (*entities.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeCanvas) FetchAvatar(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.avatarErr != nil {
		return nil, f.avatarErr
	}
	return f.avatar, nil
}

func (f *fakeCanvas) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type staticToken string

func (s staticToken) CanvasToken(ctx context.Context) (string, error) {
	if s == "" {
		return "", entities.ErrNoToken
	}
	return string(s), nil
}

func newTestStore(t *testing.T) ports.Store {
	t.Helper()
	store := repository.Namespace(repository.NewMemoryStore(), "test")
	t.Cleanup(func() { store.Close() })
	return store
}

func green() entities.Color { return entities.Color{G: 1, A: 1} }
func red() entities.Color   { return entities.Color{R: 1, A: 1} }

// bioCalc is the two-course registry used across the pipeline tests
func bioCalc() entities.Registry {
	return entities.NewRegistry([]entities.Course{
		{Code: 1, Name: "Bio", Color: green()},
		{Code: 2, Name: "Calc", Color: red()},
	})
}

func bioCalcStubs() []entities.RemoteAssignmentStub {
	return []entities.RemoteAssignmentStub{
		{Name: "Lab", DueAt: "2024-01-10T23:59:00Z", CourseID: 1, HTMLURL: "https://x/1"},
		{Name: "HW3", DueAt: "2024-01-09T23:59:00Z", CourseID: 2, HTMLURL: "https://x/2"},
		{Name: "Orphan", DueAt: "2024-01-10T10:00:00Z", CourseID: 99, HTMLURL: "https://x/3"},
	}
}

func newTestCourseService(t *testing.T, store ports.Store, client ports.CanvasClient) *CourseService {
	t.Helper()
	return NewCourseService(store, client, staticToken("tok"), logger.NewNop(), metrics.New())
}
