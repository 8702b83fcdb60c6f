package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"arrangement/internal/ports/output"
)

var _ output.KeyValueStore = (*KVStore)(nil)

// KVStore keeps the values of one namespace in the kv_store table.
type KVStore struct {
	pool      *pgxpool.Pool
	namespace string
}

func NewKVStore(pool *pgxpool.Pool, namespace string) *KVStore {
	return &KVStore{pool: pool, namespace: namespace}
}

const (
	selectValue = `SELECT value FROM kv_store WHERE namespace = $1 AND key = $2`
	upsertValue = `INSERT INTO kv_store (namespace, key, value) VALUES ($1, $2, $3)
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteValue = `DELETE FROM kv_store WHERE namespace = $1 AND key = $2`
	// Row locks cannot cover a key that has no row yet.
	lockKey = `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`
)

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.pool.QueryRow(ctx, selectValue, s.namespace, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", s.namespace, key, err)
	}
	return v, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.pool.Exec(ctx, upsertValue, s.namespace, key, value); err != nil {
		return fmt.Errorf("set %s/%s: %w", s.namespace, key, err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, deleteValue, s.namespace, key); err != nil {
		return fmt.Errorf("remove %s/%s: %w", s.namespace, key, err)
	}
	return nil
}

// Update runs fn inside a transaction holding an advisory lock on the key,
// so concurrent read-modify-write cycles from other processes serialize.
func (s *KVStore) Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockKey, s.namespace, key); err != nil {
			return fmt.Errorf("lock %s/%s: %w", s.namespace, key, err)
		}
		var old string
		ok := true
		err := tx.QueryRow(ctx, selectValue+` FOR UPDATE`, s.namespace, key).Scan(&old)
		if errors.Is(err, pgx.ErrNoRows) {
			ok = false
		} else if err != nil {
			return fmt.Errorf("read %s/%s: %w", s.namespace, key, err)
		}
		next, err := fn(old, ok)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertValue, s.namespace, key, next); err != nil {
			return fmt.Errorf("write %s/%s: %w", s.namespace, key, err)
		}
		return nil
	})
}
