package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/pluxee-mcp/internal/application"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- RecordStore ---

type memRecordStore struct {
	mu      sync.Mutex
	values  map[model.CredentialKey]string
	loads   int
	saves   int
	saveErr error
	loadErr error
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{values: make(map[model.CredentialKey]string)}
}

func (s *memRecordStore) Load(_ context.Context, key model.CredentialKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.values[key], nil
}

func (s *memRecordStore) Save(_ context.Context, key model.CredentialKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.values[key] = value
	return nil
}

func (s *memRecordStore) Delete(_ context.Context, key model.CredentialKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memRecordStore) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *memRecordStore) value(key model.CredentialKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// --- environment ---

type fakeEnv struct {
	mu      sync.Mutex
	vars    map[string]string
	lookups int
}

func newFakeEnv(vars map[string]string) *fakeEnv {
	if vars == nil {
		vars = map[string]string{}
	}
	return &fakeEnv{vars: vars}
}

func (e *fakeEnv) lookup(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lookups++
	v, ok := e.vars[key]
	return v, ok
}

func (e *fakeEnv) lookupCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookups
}

// --- LoginProvider ---

type fakeLogin struct {
	calls   atomic.Int32
	token   string
	err     error
	release chan struct{} // when non-nil, ObtainToken blocks until closed
	waitCtx bool          // when set, ObtainToken blocks until ctx is done
}

func (l *fakeLogin) ObtainToken(ctx context.Context, _ string, _ time.Duration) (string, error) {
	l.calls.Add(1)
	if l.waitCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if l.release != nil {
		<-l.release
	}
	return l.token, l.err
}

// --- TokenSource ---

type fakeTokens struct {
	mu         sync.Mutex
	current    string
	refreshed  string
	refreshErr error
	ensures    int
	refreshes  int
}

func (f *fakeTokens) Ensure(_ context.Context, force bool) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensures++
	if force {
		f.refreshes++
		if f.refreshErr != nil {
			return model.Credential{}, f.refreshErr
		}
		f.current = f.refreshed
		return model.Credential{Value: f.current, Source: model.SourceInteractiveLogin}, nil
	}
	return model.Credential{Value: f.current, Source: model.SourceMemory}, nil
}

func (f *fakeTokens) Session() model.SessionContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.SessionContext{Token: model.Credential{Value: f.current, Source: model.SourceMemory}}
}

// --- PluxeeTransport ---

type sentRequest struct {
	req   model.Request
	token string
}

type scriptedTransport struct {
	mu        sync.Mutex
	responses []*model.Response
	errs      []error
	sent      []sentRequest
}

func (t *scriptedTransport) Send(_ context.Context, req model.Request, token string) (*model.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := len(t.sent)
	t.sent = append(t.sent, sentRequest{req: req, token: token})
	if i < len(t.errs) && t.errs[i] != nil {
		return nil, t.errs[i]
	}
	if i >= len(t.responses) {
		return nil, errors.New("unexpected extra request")
	}
	return t.responses[i], nil
}

// --- RequestExecutor ---

type routeFunc func(req model.Request) (*model.Response, error)

type routeExecutor struct {
	mu     sync.Mutex
	routes map[string]routeFunc
	calls  []model.Request
}

func newRouteExecutor() *routeExecutor {
	return &routeExecutor{routes: make(map[string]routeFunc)}
}

func (e *routeExecutor) on(method, path string, fn routeFunc) *routeExecutor {
	e.routes[method+" "+path] = fn
	return e
}

func (e *routeExecutor) onJSON(method, path, body string) *routeExecutor {
	return e.on(method, path, func(model.Request) (*model.Response, error) {
		return &model.Response{StatusCode: 200, Body: []byte(body)}, nil
	})
}

func (e *routeExecutor) Execute(_ context.Context, req model.Request) (*model.Response, error) {
	e.mu.Lock()
	e.calls = append(e.calls, req)
	fn, ok := e.routes[req.Method+" "+req.Path]
	e.mu.Unlock()
	if !ok {
		return nil, &model.UpstreamError{Method: req.Method, Path: req.Path, StatusCode: 404}
	}
	return fn(req)
}

func (e *routeExecutor) callsTo(path string) []model.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Request
	for _, c := range e.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// newSession wires a SessionManager over in-memory tiers.
func newSession(records *memRecordStore, env *fakeEnv, login *fakeLogin, timeout time.Duration) (*application.SessionManager, *application.CredentialStore) {
	if env == nil {
		env = newFakeEnv(nil)
	}
	store := application.NewCredentialStore(records, env.lookup, discardLogger())
	return application.NewSessionManager(store, login, "https://login.example/", timeout, discardLogger()), store
}
