package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

const (
	todoPath    = "/api/v1/users/self/todo"
	todoQuery   = "per_page=100"
	coursesPath = "/api/v1/courses"
	// brackets are sent unescaped, as Canvas documents them
	coursesQuery = "per_page=100&include[]=term&include[]=favorites&include[]=teachers"
	profilePath  = "/api/v1/users/self/profile"

	maxAvatarBytes = 5 << 20
)

// Client talks to the Canvas REST API of one or more institutions
type Client struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a Canvas client. A zero RequestsPerSecond disables pacing.
func NewClient(cfg config.CanvasConfig, appLogger *logger.Logger, m *metrics.Metrics) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		limiter:    limiter,
		logger:     appLogger.WithComponent("canvas"),
		metrics:    m,
	}
}

var _ ports.CanvasClient = (*Client)(nil)

type prefixResult struct {
	index int
	stubs []entities.RemoteAssignmentStub
}

// FetchTodos fetches the to-do list of every prefix concurrently. The
// result is all-or-nothing: the first failing prefix cancels the others
// and its error is returned.
func (c *Client) FetchTodos(ctx context.Context, token string, prefixes []string) ([]entities.RemoteAssignmentStub, error) {
	if len(prefixes) == 0 {
		return nil, entities.ErrNoPrefixesConfigured
	}

	p := pool.NewWithResults[prefixResult]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, prefix := range prefixes {
		i, prefix := i, prefix
		p.Go(func(ctx context.Context) (prefixResult, error) {
			stubs, err := c.fetchTodo(ctx, token, prefix)
			return prefixResult{index: i, stubs: stubs}, err
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	var stubs []entities.RemoteAssignmentStub
	for _, r := range results {
		stubs = append(stubs, r.stubs...)
	}
	return stubs, nil
}

func (c *Client) fetchTodo(ctx context.Context, token, prefix string) ([]entities.RemoteAssignmentStub, error) {
	u, err := c.buildURL(prefix, todoPath, todoQuery)
	if err != nil {
		return nil, err
	}

	log := c.logger.WithPrefix(prefix)
	var items []entities.TodoItem
	if err := c.getJSON(ctx, log, "todo", prefix, token, u, &items); err != nil {
		return nil, err
	}

	stubs := make([]entities.RemoteAssignmentStub, 0, len(items))
	for _, item := range items {
		// quiz-only and other non-assignment entries carry no stub
		if item.Assignment == nil {
			continue
		}
		stubs = append(stubs, *item.Assignment)
	}
	log.Debugw("Fetched to-do list", "items", len(items), "assignments", len(stubs))
	return stubs, nil
}

// FetchCourses lists the user's courses with term, favorite and teacher info
func (c *Client) FetchCourses(ctx context.Context, token, prefix string) ([]entities.RemoteCourse, error) {
	u, err := c.buildURL(prefix, coursesPath, coursesQuery)
	if err != nil {
		return nil, err
	}

	var courses []entities.RemoteCourse
	if err := c.getJSON(ctx, c.logger.WithPrefix(prefix), "courses", prefix, token, u, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// FetchProfile fetches the authenticated user's profile
func (c *Client) FetchProfile(ctx context.Context, token, prefix string) (*entities.Profile, error) {
	u, err := c.buildURL(prefix, profilePath, "")
	if err != nil {
		return nil, err
	}

	var profile entities.Profile
	if err := c.getJSON(ctx, c.logger.WithPrefix(prefix), "profile", prefix, token, u, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchAvatar downloads a profile image. Avatar URLs are public, so no
// token is sent, and any non-2xx status is ErrLoadFailed.
func (c *Client) FetchAvatar(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("avatar %q: %w", rawURL, entities.ErrBadURL)
	}

	resp, err := c.do(ctx, c.logger, "avatar", "avatar", "", u.String(), avatarStatusError)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("avatar: %w: %v", entities.ErrLoadFailed, err)
	}
	return data, nil
}

// templateLabel stands in for the prefix when checking which host the
// endpoint template itself names.
const templateLabel = "acrylicprefix0"

// buildURL expands the endpoint template for prefix and appends path and
// query. The prefix must be a DNS label and may only fill in the template's
// placeholder, never change the scheme or host around it.
func (c *Client) buildURL(prefix, path, query string) (string, error) {
	if !entities.ValidPrefix(prefix) {
		return "", fmt.Errorf("%q: %w: prefix is not a DNS label", prefix, entities.ErrBadURL)
	}

	raw := strings.ReplaceAll(c.endpoint, "{prefix}", prefix)
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%s: %w: %q", prefix, entities.ErrBadURL, raw)
	}

	ref, err := url.Parse(strings.ReplaceAll(c.endpoint, "{prefix}", templateLabel))
	if err != nil || ref.Scheme != base.Scheme ||
		strings.ReplaceAll(ref.Host, templateLabel, prefix) != base.Host {
		return "", fmt.Errorf("%s: %w: host %q is not the endpoint's", prefix, entities.ErrBadURL, base.Host)
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + path
	base.RawQuery = query
	return base.String(), nil
}

func (c *Client) getJSON(ctx context.Context, log *logger.Logger, endpoint, prefix, token, u string, dest interface{}) error {
	resp, err := c.do(ctx, log, endpoint, prefix, token, u, statusError)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.metrics.CanvasRequests.WithLabelValues(endpoint, "undecodable").Inc()
		return fmt.Errorf("%s: %w: decode %s: %v", prefix, entities.ErrLoadFailed, endpoint, err)
	}
	return nil
}

// do issues the GET and maps the status code through mapStatus. Errors are
// prefixed with label. On success the caller owns the response body.
func (c *Client) do(ctx context.Context, log *logger.Logger, endpoint, label, token, u string, mapStatus func(int) error) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", label, entities.ErrLoadFailed, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", label, entities.ErrBadURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	c.metrics.CanvasDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	if err != nil {
		c.metrics.CanvasRequests.WithLabelValues(endpoint, "transport_error").Inc()
		log.LogCanvasRequest(endpoint, 0, ms(duration), err)
		return nil, fmt.Errorf("%s: %w: %v", label, entities.ErrLoadFailed, err)
	}

	statusErr := mapStatus(resp.StatusCode)
	log.LogCanvasRequest(endpoint, resp.StatusCode, ms(duration), statusErr)
	if statusErr != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.metrics.CanvasRequests.WithLabelValues(endpoint, outcome(statusErr)).Inc()
		return nil, fmt.Errorf("%s: %w (status %d)", label, statusErr, resp.StatusCode)
	}

	c.metrics.CanvasRequests.WithLabelValues(endpoint, "ok").Inc()
	return resp, nil
}

// statusError maps API responses, where 404 means the institution does not exist
func statusError(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return entities.ErrNotAuthorized
	case code == http.StatusNotFound:
		return entities.ErrUnknownPrefix
	case code < 200 || code > 299:
		return entities.ErrLoadFailed
	}
	return nil
}

func avatarStatusError(code int) error {
	if code < 200 || code > 299 {
		return entities.ErrLoadFailed
	}
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, entities.ErrNotAuthorized):
		return "unauthorized"
	case errors.Is(err, entities.ErrUnknownPrefix):
		return "unknown_prefix"
	}
	return "error"
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1000000
}
