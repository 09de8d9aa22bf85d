// Package mcphandler exposes the Pluxee operations as MCP tools.
package mcphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "pluxee"

// Handler implements the tool handlers on top of the PluxeeAPI port.
type Handler struct {
	api    driving.PluxeeAPI
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(api driving.PluxeeAPI, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{api: api, logger: logger}
}

// NewServer creates an MCP server with every tool registered.
func NewServer(h *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("login",
		mcp.WithDescription("Open a browser to log in and acquire a token. Returns a short status message."),
	), h.Login)

	s.AddTool(mcp.NewTool("get_budget_summary",
		mcp.WithDescription("Return the budget summary as JSON: {budget, budget_balance, cycle}."),
	), h.BudgetSummary)

	s.AddTool(mcp.NewTool("get_orders_history",
		mcp.WithDescription("Return the user's order history between from_date and to_date (format DD/MM/YYYY)."),
		mcp.WithString("from_date", mcp.Required(), mcp.Description("Start date, DD/MM/YYYY")),
		mcp.WithString("to_date", mcp.Required(), mcp.Description("End date, DD/MM/YYYY")),
	), h.OrdersHistory)

	s.AddTool(mcp.NewTool("get_nearby_restaurants",
		mcp.WithDescription("List restaurants near the user's default address."),
		mcp.WithString("lang", mcp.DefaultString("he"), mcp.Description("Response language")),
	), h.NearbyRestaurants)

	s.AddTool(mcp.NewTool("get_restaurant_menu",
		mcp.WithDescription("Return the menu tree of a restaurant."),
		mcp.WithNumber("restaurant_id", mcp.Required(), mcp.Description("Restaurant id from get_nearby_restaurants")),
		mcp.WithString("lang", mcp.DefaultString("he"), mcp.Description("Response language")),
		mcp.WithNumber("order_type", mcp.DefaultNumber(model.DefaultOrderType)),
		mcp.WithNumber("element_type_deep", mcp.DefaultNumber(model.DefaultElementTypeDeep)),
	), h.RestaurantMenu)

	s.AddTool(mcp.NewTool("get_session_status",
		mcp.WithDescription("Report whether a token and area hash are available, without logging in."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.SessionStatus)

	return s
}

// Login forces an interactive login.
func (h *Handler) Login(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := h.api.Login(ctx); err != nil {
		return h.toolError("login", err), nil
	}
	return mcp.NewToolResultText("Login successful and token acquired."), nil
}

// BudgetSummary returns the budget projection of the profile.
func (h *Handler) BudgetSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.api.BudgetSummary(ctx)
	if err != nil {
		return h.toolError("get_budget_summary", err), nil
	}
	return jsonResult(summary), nil
}

// OrdersHistory returns the deals between two dates.
func (h *Handler) OrdersHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.api.OrdersHistory(ctx, from, to)
	if err != nil {
		return h.toolError("get_orders_history", err), nil
	}
	return resultText(res), nil
}

// NearbyRestaurants lists restaurants around the user's locality.
func (h *Handler) NearbyRestaurants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.api.NearbyRestaurants(ctx, req.GetString("lang", "he"))
	if err != nil {
		return h.toolError("get_nearby_restaurants", err), nil
	}
	return resultText(res), nil
}

// RestaurantMenu returns one restaurant's menu tree.
func (h *Handler) RestaurantMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("restaurant_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.api.RestaurantMenu(ctx, model.MenuQuery{
		RestaurantID:    int64(id),
		Lang:            req.GetString("lang", "he"),
		OrderType:       req.GetInt("order_type", model.DefaultOrderType),
		ElementTypeDeep: req.GetInt("element_type_deep", model.DefaultElementTypeDeep),
	})
	if err != nil {
		return h.toolError("get_restaurant_menu", err), nil
	}
	return resultText(res), nil
}

// SessionStatus reports the session state.
func (h *Handler) SessionStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.api.Status(ctx)), nil
}

// toolError logs err and turns it into a tool-level error result so the
// client sees the failure without the session being torn down.
func (h *Handler) toolError(tool string, err error) *mcp.CallToolResult {
	h.logger.Error("tool call failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(describe(err))
}

func describe(err error) string {
	var upErr *model.UpstreamError
	switch {
	case errors.Is(err, model.ErrLoginTimeout):
		return "Token not found. Complete login/OTP in the opened browser and retry."
	case errors.Is(err, model.ErrLoginUnavailable):
		return fmt.Sprintf("Interactive login is unavailable: %v", err)
	case errors.As(err, &upErr) && upErr.StatusCode != 0:
		msg := fmt.Sprintf("Pluxee API returned HTTP %d for %s", upErr.StatusCode, upErr.Path)
		if body := upErr.BodyExcerpt(); body != "" {
			msg += ": " + body
		}
		return msg
	default:
		return err.Error()
	}
}

func resultText(res model.Result) *mcp.CallToolResult {
	return mcp.NewToolResultText(string(res.JSON()))
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
