// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

// Environment variables consulted by the environment tier.
const (
	TokenEnvVar    = "PLUXEE_TOKEN"
	AreaHashEnvVar = "PLUXEE_AREA_HASH"
)

// LookupEnvFunc matches os.LookupEnv and lets tests substitute the environment.
type LookupEnvFunc func(key string) (string, bool)

// CredentialStore resolves session values across three tiers: an in-process
// cache, the process environment and the persisted RecordStore. Values found
// in the environment or the RecordStore are promoted into the cache, after
// which reads never touch the outer tiers again.
type CredentialStore struct {
	mu        sync.RWMutex
	memory    map[model.CredentialKey]model.Credential
	records   driven.RecordStore
	lookupEnv LookupEnvFunc
	envVars   map[model.CredentialKey]string
	logger    *slog.Logger
}

// NewCredentialStore creates a store backed by records. lookupEnv may be nil,
// in which case os.LookupEnv is used.
func NewCredentialStore(records driven.RecordStore, lookupEnv LookupEnvFunc, logger *slog.Logger) *CredentialStore {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		memory:    make(map[model.CredentialKey]model.Credential),
		records:   records,
		lookupEnv: lookupEnv,
		envVars: map[model.CredentialKey]string{
			model.KeyToken:    TokenEnvVar,
			model.KeyAreaHash: AreaHashEnvVar,
		},
		logger: logger,
	}
}

// Peek returns the cached value for key with its original provenance. It
// performs no I/O.
func (s *CredentialStore) Peek(key model.CredentialKey) (model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.memory[key]
	return cred, ok && !cred.IsZero()
}

// Read resolves key: cache first, then environment, then the persisted
// record. The returned credential's Source names the tier that answered.
// Read failures of the persisted tier are logged and treated as absent.
func (s *CredentialStore) Read(ctx context.Context, key model.CredentialKey) (model.Credential, bool) {
	if cred, ok := s.Peek(key); ok {
		return model.Credential{Value: cred.Value, Source: model.SourceMemory}, true
	}

	if name, ok := s.envVars[key]; ok {
		if v, found := s.lookupEnv(name); found {
			if v = strings.TrimSpace(v); v != "" {
				return s.promote(key, model.Credential{Value: v, Source: model.SourceEnvironment}), true
			}
		}
	}

	v, err := s.records.Load(ctx, key)
	if err != nil {
		s.logger.Warn("reading persisted record failed, treating as absent", "key", key, "error", err)
		return model.Credential{}, false
	}
	if v = strings.TrimSpace(v); v != "" {
		return s.promote(key, model.Credential{Value: v, Source: model.SourceFile}), true
	}

	return model.Credential{}, false
}

// promote caches cred unless a concurrent writer got there first, and returns
// whichever value ends up cached.
func (s *CredentialStore) promote(key model.CredentialKey, cred model.Credential) model.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.memory[key]; ok && !existing.IsZero() {
		return existing
	}
	s.memory[key] = cred
	return cred
}

// Write replaces the cached value synchronously, then persists it. A
// persistence failure is returned as a *model.PersistenceError; the cached
// value stays in place either way and callers should only log it.
func (s *CredentialStore) Write(ctx context.Context, key model.CredentialKey, cred model.Credential) error {
	cred.Value = strings.TrimSpace(cred.Value)
	if cred.IsZero() {
		return s.Clear(ctx, key)
	}

	s.mu.Lock()
	s.memory[key] = cred
	s.mu.Unlock()

	if err := s.records.Save(ctx, key, cred.Value); err != nil {
		return &model.PersistenceError{Key: key, Err: err}
	}
	return nil
}

// Clear drops key from the cache and the persisted tier. The environment is
// left untouched, so a value seeded there is found again on the next Read.
func (s *CredentialStore) Clear(ctx context.Context, key model.CredentialKey) error {
	s.mu.Lock()
	delete(s.memory, key)
	s.mu.Unlock()

	if err := s.records.Delete(ctx, key); err != nil {
		return &model.PersistenceError{Key: key, Err: err}
	}
	return nil
}
