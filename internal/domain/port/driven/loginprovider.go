package driven

import (
	"context"
	"time"
)

// LoginProvider obtains a fresh session token through an interactive login.
// Implementations must return model.ErrLoginTimeout when no token appears
// before timeout elapses and model.ErrLoginUnavailable when the login surface
// cannot be started. Invoking it repeatedly must be safe.
type LoginProvider interface {
	ObtainToken(ctx context.Context, startURL string, timeout time.Duration) (string, error)
}
