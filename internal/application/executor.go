package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

// TokenSource supplies tokens to the Executor. SessionManager implements it.
type TokenSource interface {
	Ensure(ctx context.Context, forceRefresh bool) (model.Credential, error)
	Session() model.SessionContext
}

// Executor sends requests with the current token and recovers from an expired
// token exactly once: a 401 triggers one forced refresh and one resend. The
// outcome of the resend is final.
type Executor struct {
	transport driven.PluxeeTransport
	tokens    TokenSource
	logger    *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(transport driven.PluxeeTransport, tokens TokenSource, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{transport: transport, tokens: tokens, logger: logger}
}

// Execute performs req. Non-2xx responses and transport failures come back as
// *model.UpstreamError; login failures during the refresh are returned as is.
func (e *Executor) Execute(ctx context.Context, req model.Request) (*model.Response, error) {
	cred, err := e.tokens.Ensure(ctx, false)
	if err != nil {
		return nil, err
	}

	resp, err := e.send(ctx, req, cred)
	if err != nil {
		return nil, err
	}

	if resp.Unauthorized() {
		e.logger.Info("upstream rejected token, refreshing once",
			"method", req.Method,
			"path", req.Path,
			"token_source", cred.Source,
		)

		cred, err = e.refresh(ctx, cred)
		if err != nil {
			return nil, err
		}

		resp, err = e.send(ctx, req, cred)
		if err != nil {
			return nil, err
		}
	}

	if !resp.OK() {
		return nil, &model.UpstreamError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	return resp, nil
}

// refresh returns the token to resend with. When another call already replaced
// the rejected token, that newer token is reused instead of forcing a login.
func (e *Executor) refresh(ctx context.Context, rejected model.Credential) (model.Credential, error) {
	if current := e.tokens.Session().Token; !current.IsZero() && current.Value != rejected.Value {
		e.logger.Info("token already refreshed by another call, resending")
		return current, nil
	}
	return e.tokens.Ensure(ctx, true)
}

func (e *Executor) send(ctx context.Context, req model.Request, cred model.Credential) (*model.Response, error) {
	resp, err := e.transport.Send(ctx, req, cred.Value)
	if err != nil {
		return nil, &model.UpstreamError{Method: req.Method, Path: req.Path, Err: err}
	}
	return resp, nil
}
