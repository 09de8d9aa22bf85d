package driven

import (
	"context"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

// PluxeeTransport sends a single request to the remote service. token is
// attached as the session cookie when non-empty. Any HTTP status is returned
// as a Response; only transport failures produce an error.
type PluxeeTransport interface {
	Send(ctx context.Context, req model.Request, token string) (*model.Response, error)
}
