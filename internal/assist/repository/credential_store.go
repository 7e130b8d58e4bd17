package repository

import (
	"context"
	"sync/atomic"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/common/cache"
	appErr "lcbridge/pkg/errors"
)

// CredentialStore holds the process-wide judge session override.
type CredentialStore interface {
	// Active returns the override merged field by field over the fallback.
	Active(ctx context.Context) (model.Credential, error)
	// Override returns only the explicitly stored pair.
	Override(ctx context.Context) (model.Credential, error)
	// Set replaces both fields at once. Empty fields are stored as absent.
	Set(ctx context.Context, cred model.Credential) error
	// Clear removes both fields at once.
	Clear(ctx context.Context) error
}

func mergeFallback(override, fallback model.Credential) model.Credential {
	out := override
	if out.Session == "" {
		out.Session = fallback.Session
	}
	if out.CSRFToken == "" {
		out.CSRFToken = fallback.CSRFToken
	}
	return out
}

// MemoryCredentialStore keeps the override in process memory.
type MemoryCredentialStore struct {
	current  atomic.Pointer[model.Credential]
	fallback model.Credential
}

// NewMemoryCredentialStore creates an empty store. fallback usually comes from
// the environment.
func NewMemoryCredentialStore(fallback model.Credential) *MemoryCredentialStore {
	s := &MemoryCredentialStore{fallback: fallback.Trimmed()}
	s.current.Store(&model.Credential{})
	return s
}

func (s *MemoryCredentialStore) Active(ctx context.Context) (model.Credential, error) {
	override, _ := s.Override(ctx)
	return mergeFallback(override, s.fallback), nil
}

func (s *MemoryCredentialStore) Override(context.Context) (model.Credential, error) {
	return *s.current.Load(), nil
}

func (s *MemoryCredentialStore) Set(_ context.Context, cred model.Credential) error {
	trimmed := cred.Trimmed()
	s.current.Store(&trimmed)
	return nil
}

func (s *MemoryCredentialStore) Clear(context.Context) error {
	s.current.Store(&model.Credential{})
	return nil
}

const (
	credentialKey        = "lcbridge:leetcode:session"
	credentialFieldSess  = "leetcode_session"
	credentialFieldToken = "csrf_token"
)

// RedisCredentialStore shares the override between replicas through one hash.
type RedisCredentialStore struct {
	cache    cache.Cache
	key      string
	fallback model.Credential
}

// NewRedisCredentialStore creates a Redis-backed store. An empty key uses the default.
func NewRedisCredentialStore(cacheClient cache.Cache, key string, fallback model.Credential) *RedisCredentialStore {
	if key == "" {
		key = credentialKey
	}
	return &RedisCredentialStore{cache: cacheClient, key: key, fallback: fallback.Trimmed()}
}

func (s *RedisCredentialStore) Active(ctx context.Context) (model.Credential, error) {
	override, err := s.Override(ctx)
	if err != nil {
		return model.Credential{}, err
	}
	return mergeFallback(override, s.fallback), nil
}

func (s *RedisCredentialStore) Override(ctx context.Context) (model.Credential, error) {
	fields, err := s.cache.HGetAll(ctx, s.key)
	if err != nil {
		return model.Credential{}, appErr.Wrapf(err, appErr.CacheError, "load session override failed")
	}
	return model.Credential{
		Session:   fields[credentialFieldSess],
		CSRFToken: fields[credentialFieldToken],
	}, nil
}

// Set writes both fields with a single HSET so readers never see a mixed pair.
func (s *RedisCredentialStore) Set(ctx context.Context, cred model.Credential) error {
	trimmed := cred.Trimmed()
	if trimmed.Empty() {
		return s.Clear(ctx)
	}
	err := s.cache.HMSet(ctx, s.key, map[string]interface{}{
		credentialFieldSess:  trimmed.Session,
		credentialFieldToken: trimmed.CSRFToken,
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "store session override failed")
	}
	return nil
}

func (s *RedisCredentialStore) Clear(ctx context.Context) error {
	if err := s.cache.Del(ctx, s.key); err != nil {
		return appErr.Wrapf(err, appErr.CacheError, "clear session override failed")
	}
	return nil
}
