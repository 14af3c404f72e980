package tenancy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrNoPreference is returned when a user has no stored active tenant.
var ErrNoPreference = errors.New("tenancy: no active tenant preference")

// PreferenceStore persists each staff user's last-chosen active tenant.
// This replaces the browser local-storage key of the legacy front-end;
// last write wins, no cross-session coordination.
type PreferenceStore interface {
	ActiveTenant(ctx context.Context, userID string) (string, error)
	SetActiveTenant(ctx context.Context, userID, tenantID string) error
}

// RedisPreferenceStore keeps preferences in Redis under a fixed key prefix.
type RedisPreferenceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisPreferenceStore creates a Redis-backed preference store.
func NewRedisPreferenceStore(client *redis.Client) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client, prefix: "active_tenant:"}
}

// ActiveTenant returns the stored tenant id for the user.
func (s *RedisPreferenceStore) ActiveTenant(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoPreference
	}
	if err != nil {
		return "", fmt.Errorf("tenancy: get preference: %w", err)
	}
	return val, nil
}

// SetActiveTenant stores the tenant id for the user. No expiry: the
// preference survives until overwritten.
func (s *RedisPreferenceStore) SetActiveTenant(ctx context.Context, userID, tenantID string) error {
	if err := s.client.Set(ctx, s.prefix+userID, tenantID, 0).Err(); err != nil {
		return fmt.Errorf("tenancy: set preference: %w", err)
	}
	return nil
}

// MemoryPreferenceStore is the fallback when Redis is not configured.
type MemoryPreferenceStore struct {
	mu      sync.RWMutex
	tenants map[string]string
}

// NewMemoryPreferenceStore creates an in-memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{tenants: make(map[string]string)}
}

// ActiveTenant returns the stored tenant id for the user.
func (s *MemoryPreferenceStore) ActiveTenant(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenantID, ok := s.tenants[userID]
	if !ok {
		return "", ErrNoPreference
	}
	return tenantID, nil
}

// SetActiveTenant stores the tenant id for the user.
func (s *MemoryPreferenceStore) SetActiveTenant(ctx context.Context, userID, tenantID string) error {
	s.mu.Lock()
	s.tenants[userID] = tenantID
	s.mu.Unlock()
	return nil
}
