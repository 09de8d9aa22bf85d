// Package driving defines the ports that inbound adapters (tool server, REST
// API, CLI) call into.
package driving

import (
	"context"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

// PluxeeAPI is the set of operations exposed to callers. Upstream payloads
// are returned unmodified inside model.Result; a Result carrying a Problem is
// a successful call that lacked business data.
type PluxeeAPI interface {
	Login(ctx context.Context) (model.Credential, error)
	Status(ctx context.Context) model.SessionStatus
	BudgetSummary(ctx context.Context) (model.BudgetSummary, error)
	OrdersHistory(ctx context.Context, fromDate, toDate string) (model.Result, error)
	NearbyRestaurants(ctx context.Context, lang string) (model.Result, error)
	RestaurantMenu(ctx context.Context, q model.MenuQuery) (model.Result, error)
}

// SessionAdmin manages the stored session out of band.
type SessionAdmin interface {
	Login(ctx context.Context) (model.Credential, error)
	Status(ctx context.Context) model.SessionStatus
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
