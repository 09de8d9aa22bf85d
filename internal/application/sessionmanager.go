package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving"
)

// DefaultLoginTimeout bounds a single interactive login.
const DefaultLoginTimeout = 180 * time.Second

var _ driving.SessionAdmin = (*SessionManager)(nil)

// loginAttempt is one in-flight interactive login. cred and err are written
// once, before done is closed.
type loginAttempt struct {
	done    chan struct{}
	cred    model.Credential
	err     error
	waiters int
}

// SessionManager owns the session state (token and area hash) and is the only
// component that changes it. Token acquisition is single-flighted: while a
// login is in flight every caller that needs a fresh token waits for that
// login's outcome instead of starting another one.
type SessionManager struct {
	store    *CredentialStore
	login    driven.LoginProvider
	startURL string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	attempt *loginAttempt
}

// NewSessionManager creates a SessionManager. A non-positive timeout selects
// DefaultLoginTimeout.
func NewSessionManager(
	store *CredentialStore,
	login driven.LoginProvider,
	startURL string,
	timeout time.Duration,
	logger *slog.Logger,
) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		store:    store,
		login:    login,
		startURL: startURL,
		timeout:  timeout,
		logger:   logger,
	}
}

// Ensure returns a usable token. Without forceRefresh it answers from the
// cache, the environment or the persisted record before falling back to an
// interactive login. With forceRefresh it always goes through the login,
// joining one that is already running.
//
// Errors wrap model.ErrLoginTimeout or model.ErrLoginUnavailable, or are the
// caller's ctx.Err() when the caller stopped waiting.
func (m *SessionManager) Ensure(ctx context.Context, forceRefresh bool) (model.Credential, error) {
	if !forceRefresh {
		if cred, ok := m.store.Read(ctx, model.KeyToken); ok {
			return cred, nil
		}
	}
	return m.acquire(ctx, forceRefresh)
}

// Login forces a fresh interactive login.
func (m *SessionManager) Login(ctx context.Context) (model.Credential, error) {
	return m.Ensure(ctx, true)
}

func (m *SessionManager) acquire(ctx context.Context, forceRefresh bool) (model.Credential, error) {
	m.mu.Lock()
	a := m.attempt
	if a == nil {
		// A login may have finished between the caller's Read and now.
		if !forceRefresh {
			if cred, ok := m.store.Peek(model.KeyToken); ok {
				m.mu.Unlock()
				return cred, nil
			}
		}
		a = &loginAttempt{done: make(chan struct{})}
		m.attempt = a
		go m.run(context.WithoutCancel(ctx), a)
	}
	a.waiters++
	m.mu.Unlock()

	select {
	case <-a.done:
		return a.cred, a.err
	case <-ctx.Done():
		return model.Credential{}, ctx.Err()
	}
}

// run performs one login and broadcasts its outcome. It is detached from the
// cancellation of the caller that started it; the fixed timeout is the only
// bound.
func (m *SessionManager) run(ctx context.Context, a *loginAttempt) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	m.logger.Info("interactive login started", "start_url", m.startURL, "timeout", m.timeout)

	token, err := m.login.ObtainToken(ctx, m.startURL, m.timeout)
	err = classifyLoginError(strings.TrimSpace(token), err, m.timeout)

	if err == nil {
		cred := model.Credential{Value: strings.TrimSpace(token), Source: model.SourceInteractiveLogin}
		if perr := m.store.Write(context.WithoutCancel(ctx), model.KeyToken, cred); perr != nil {
			m.logger.Warn("token acquired but not persisted", "error", perr)
		}
		a.cred = cred
		m.logger.Info("interactive login succeeded",
			"token", cred.Redacted(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	} else {
		a.err = err
		m.logger.Error("interactive login failed",
			"error", err,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}

	m.mu.Lock()
	m.attempt = nil
	m.mu.Unlock()
	close(a.done)
}

// classifyLoginError maps provider outcomes onto the login error taxonomy.
func classifyLoginError(token string, err error, timeout time.Duration) error {
	switch {
	case err == nil && token == "":
		return fmt.Errorf("%w: login returned an empty token", model.ErrLoginUnavailable)
	case err == nil:
		return nil
	case errors.Is(err, model.ErrLoginTimeout), errors.Is(err, model.ErrLoginUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s: %w", model.ErrLoginTimeout, timeout, err)
	default:
		return fmt.Errorf("%w: %w", model.ErrLoginUnavailable, err)
	}
}

// LoginInFlight reports whether an interactive login is currently running.
func (m *SessionManager) LoginInFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt != nil
}

// Session returns a snapshot of the cached session values. It performs no I/O.
func (m *SessionManager) Session() model.SessionContext {
	token, _ := m.store.Peek(model.KeyToken)
	areaHash, _ := m.store.Peek(model.KeyAreaHash)
	return model.SessionContext{Token: token, AreaHash: areaHash.Value}
}

// Status summarises the session for operators.
func (m *SessionManager) Status(ctx context.Context) model.SessionStatus {
	token, hasToken := m.store.Read(ctx, model.KeyToken)
	if hasToken {
		// Report where the value originally came from, not the cache hit.
		if cached, ok := m.store.Peek(model.KeyToken); ok {
			token = cached
		}
	}
	_, hasAreaHash := m.store.Read(ctx, model.KeyAreaHash)

	status := model.SessionStatus{
		HasToken:      hasToken,
		HasAreaHash:   hasAreaHash,
		LoginInFlight: m.LoginInFlight(),
	}
	if hasToken {
		status.TokenSource = token.Source
		status.TokenFingerprint = token.Redacted()
	}
	return status
}

// SetToken seeds the session with a token obtained out of band. The returned
// error, if any, is a non-fatal *model.PersistenceError.
func (m *SessionManager) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}
	return m.store.Write(ctx, model.KeyToken, model.Credential{Value: token, Source: model.SourceManual})
}

// AreaHash resolves the cached area hash through the credential tiers.
func (m *SessionManager) AreaHash(ctx context.Context) (string, bool) {
	cred, ok := m.store.Read(ctx, model.KeyAreaHash)
	return cred.Value, ok
}

// SetAreaHash records a freshly derived area hash. The returned error, if
// any, is a non-fatal *model.PersistenceError.
func (m *SessionManager) SetAreaHash(ctx context.Context, areaHash string) error {
	return m.store.Write(ctx, model.KeyAreaHash, model.Credential{Value: areaHash, Source: model.SourceDerived})
}

// Clear forgets the cached and persisted token and area hash. Values seeded
// through the environment are found again on the next resolution.
func (m *SessionManager) Clear(ctx context.Context) error {
	return errors.Join(
		m.store.Clear(ctx, model.KeyToken),
		m.store.Clear(ctx, model.KeyAreaHash),
	)
}
