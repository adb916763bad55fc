package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"vendor-notices/internal/ports/auth"
)

const keyPrefix = "session:"

// record es lo que se guarda en Redis por sesión.
type record struct {
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	Superuser    bool     `json:"is_superuser"`
	Capabilities []string `json:"capabilities"`
}

// RedisStore implementa auth.SessionStore sobre Redis (la UI escribe las sesiones).
type RedisStore struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	if strings.TrimSpace(addr) == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (auth.Identity, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return auth.Identity{}, false, nil
	}

	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Identity{}, false, nil
		}
		return auth.Identity{}, false, fmt.Errorf("session get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return auth.Identity{}, false, fmt.Errorf("session decode: %w", err)
	}
	if strings.TrimSpace(rec.UserID) == "" {
		return auth.Identity{}, false, nil
	}

	return auth.Identity{
		UserID:       rec.UserID,
		Username:     rec.Username,
		Superuser:    rec.Superuser,
		Capabilities: rec.Capabilities,
	}, true, nil
}

// Create guarda una sesión nueva con TTL y devuelve su id (valor de la cookie).
func (s *RedisStore) Create(ctx context.Context, id auth.Identity, ttl time.Duration) (string, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return "", errors.New("user id required")
	}
	b, err := json.Marshal(record{
		UserID:       id.UserID,
		Username:     id.Username,
		Superuser:    id.Superuser,
		Capabilities: id.Capabilities,
	})
	if err != nil {
		return "", err
	}

	sid := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+sid, b, ttl).Err(); err != nil {
		return "", fmt.Errorf("session set: %w", err)
	}
	return sid, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, keyPrefix+strings.TrimSpace(sessionID)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
