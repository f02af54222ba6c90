package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/database"
	"github.com/acrylic/tracker/internal/ports"
)

// PostgresStore keeps blobs in the kv_blobs table
type PostgresStore struct {
	db    *sqlx.DB
	conn  *database.DB
	owned bool
}

// NewPostgresStore creates a store on a connection the caller keeps ownership of
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db, conn: &database.DB{DB: db}}
}

func openPostgresStore(conn *database.DB) *PostgresStore {
	return &PostgresStore{db: conn.DB, conn: conn, owned: true}
}

var (
	_ ports.Store          = (*PostgresStore)(nil)
	_ ports.DatabaseHealth = (*PostgresStore)(nil)
)

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_blobs WHERE key = $1`

	var value []byte
	err := s.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}

	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_blobs (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set blob %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_blobs WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM kv_blobs WHERE key LIKE $1 ESCAPE '\' ORDER BY key`

	var keys []string
	if err := s.db.SelectContext(ctx, &keys, query, escapeLike(prefix)+"%"); err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}

	return keys, nil
}

// Close releases the connection when the store opened it itself
func (s *PostgresStore) Close() error {
	if s.owned {
		return s.conn.Close()
	}
	return nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.conn.HealthCheck(ctx)
}

func (s *PostgresStore) GetConnectionInfo() map[string]interface{} {
	return s.conn.GetConnectionInfo()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
