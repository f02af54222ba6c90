package repository

import (
	"context"
	"strings"

	"github.com/acrylic/tracker/internal/ports"
)

// NamespacedStore scopes every key of an underlying store under one shared
// namespace, the way an app group scopes the app and its widget.
type NamespacedStore struct {
	inner     ports.Store
	namespace string
}

// Namespace wraps store so that key "k" is stored as "namespace:k"
func Namespace(store ports.Store, namespace string) *NamespacedStore {
	return &NamespacedStore{inner: store, namespace: namespace}
}

var _ ports.Store = (*NamespacedStore)(nil)

// Unwrap returns the underlying backend
func (s *NamespacedStore) Unwrap() ports.Store {
	return s.inner
}

func (s *NamespacedStore) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

func (s *NamespacedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.key(key))
}

func (s *NamespacedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.key(key), value)
}

func (s *NamespacedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.key(key))
}

func (s *NamespacedStore) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.inner.List(ctx, s.key(prefix))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, s.key("")))
	}
	return out, nil
}

func (s *NamespacedStore) Close() error {
	return s.inner.Close()
}
