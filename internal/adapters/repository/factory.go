package repository

import (
	"context"
	"fmt"

	"github.com/acrylic/tracker/internal/infrastructure/config"
	"github.com/acrylic/tracker/internal/infrastructure/database"
	"github.com/acrylic/tracker/internal/ports"
)

// Open builds the configured backend wrapped in the shared namespace
func Open(ctx context.Context, cfg *config.Config) (ports.Store, error) {
	var (
		store ports.Store
		err   error
	)

	switch cfg.Storage.Driver {
	case "memory":
		store = NewMemoryStore()
	case "file":
		store, err = NewFileStore(cfg.Storage.Dir)
	case "redis":
		store, err = NewRedisStore(ctx, cfg.Redis)
	case "postgres":
		var db *database.DB
		db, err = database.New(ctx, cfg.Database)
		if err == nil {
			store = openPostgresStore(db)
		}
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	return Namespace(store, cfg.Storage.Namespace), nil
}
