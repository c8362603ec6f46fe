package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/carenet/portal/internal/core/ports"
)

// SessionStore persists session entries as plain Redis strings.
// Key format: <namespace>:session:<key>
type SessionStore struct {
	client    redis.UniversalClient
	namespace string
}

var _ ports.KeyValueStore = (*SessionStore)(nil)

func NewSessionStore(client redis.UniversalClient, namespace string) *SessionStore {
	if namespace == "" {
		namespace = "carenet"
	}
	return &SessionStore{client: client, namespace: namespace}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %s: %w", key, err)
	}
	return v, true, nil
}

// SetAll writes every entry with one MSET, which Redis applies atomically.
func (s *SessionStore) SetAll(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]any, 0, len(entries)*2)
	for k, v := range entries {
		pairs = append(pairs, s.key(k), v)
	}
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Delete removes the keys with one DEL.
func (s *SessionStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(k string) string {
	return s.namespace + ":session:" + k
}
