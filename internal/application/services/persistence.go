package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/infrastructure/metrics"
	"github.com/acrylic/tracker/internal/ports"
)

// listStore persists one ordered list of records under a single key.
type listStore[T any] struct {
	store   ports.Store
	key     string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// load returns the stored list. A missing key is an empty list; corrupt
// records are skipped and counted.
func (l listStore[T]) load(ctx context.Context) ([]T, error) {
	blob, err := l.store.Get(ctx, l.key)
	if errors.Is(err, entities.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.key, err)
	}

	items, failed, err := entities.DecodeList[T](blob)
	if err != nil {
		l.metrics.DecodeFailures.WithLabelValues(l.key).Inc()
		l.logger.Warnw("Stored list is unreadable, starting empty", "key", l.key, "error", err)
		return nil, nil
	}
	if failed > 0 {
		l.metrics.DecodeFailures.WithLabelValues(l.key).Add(float64(failed))
		l.logger.Warnw("Skipped undecodable records", "key", l.key, "failed", failed, "loaded", len(items))
	}

	return items, nil
}

func (l listStore[T]) save(ctx context.Context, items []T) error {
	blob, err := entities.EncodeList(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", l.key, err)
	}
	if err := l.store.Set(ctx, l.key, blob); err != nil {
		return fmt.Errorf("save %s: %w", l.key, err)
	}
	return nil
}
