// internal/patterns/store.go

package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// PreferenceSource loads learned preferences. Implementations return
// ErrPreferencesNotFound when the user has none yet.
type PreferenceSource interface {
	GetPreferences(ctx context.Context, userID string) (*UserPreferences, error)
}

// PreferenceStore persists learned preferences.
type PreferenceStore interface {
	PreferenceSource
	SavePreferences(ctx context.Context, prefs *UserPreferences) error
}

const (
	preferenceKeyPrefix = "match:prefs:"
	// DefaultPreferenceTTL bounds how long an inactive user's preferences
	// are kept in Redis.
	DefaultPreferenceTTL = 90 * 24 * time.Hour
)

type RedisPreferenceStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPreferenceStore(client *redis.Client, ttl time.Duration) *RedisPreferenceStore {
	if ttl <= 0 {
		ttl = DefaultPreferenceTTL
	}
	return &RedisPreferenceStore{client: client, ttl: ttl}
}

func preferenceKey(userID string) string {
	return preferenceKeyPrefix + userID
}

func (s *RedisPreferenceStore) GetPreferences(ctx context.Context, userID string) (*UserPreferences, error) {
	data, err := s.client.Get(ctx, preferenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences %s: %w", userID, err)
	}

	prefs := NewUserPreferences(userID)
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("decode preferences %s: %w", userID, err)
	}
	return prefs, nil
}

func (s *RedisPreferenceStore) SavePreferences(ctx context.Context, prefs *UserPreferences) error {
	if prefs == nil || prefs.UserID == "" {
		return errors.New("save preferences: user id is required")
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences %s: %w", prefs.UserID, err)
	}
	if err := s.client.Set(ctx, preferenceKey(prefs.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save preferences %s: %w", prefs.UserID, err)
	}
	return nil
}
