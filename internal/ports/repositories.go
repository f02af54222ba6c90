package ports

import (
	"context"
)

// Store keys shared by the CLI, the API server and the widget surface.
const (
	KeyCourses      = "courses"
	KeyHidden       = "hidden"
	KeyProfileImage = "profile.image"
	KeyToken        = "credentials.token"
)

// Store is a flat key-value blob store. Get returns entities.ErrKeyNotFound
// for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// DatabaseHealth is implemented by stores backed by a SQL connection pool.
type DatabaseHealth interface {
	HealthCheck(ctx context.Context) error
	GetConnectionInfo() map[string]interface{}
}
