package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driving"
)

// Session is the part of SessionManager the endpoint operations use.
type Session interface {
	AreaHashSession
	Login(ctx context.Context) (model.Credential, error)
	Status(ctx context.Context) model.SessionStatus
}

var _ driving.PluxeeAPI = (*PluxeeService)(nil)

// PluxeeService implements the endpoint operations. Each call goes through
// the Executor and returns the upstream payload unmodified, or a Problem when
// identifiers required by the call cannot be resolved from the profile.
type PluxeeService struct {
	session     Session
	exec        RequestExecutor
	resolver    *AreaHashResolver
	defaultLang string
	logger      *slog.Logger
}

// NewPluxeeService creates a PluxeeService.
func NewPluxeeService(session Session, exec RequestExecutor, resolver *AreaHashResolver, defaultLang string, logger *slog.Logger) *PluxeeService {
	if defaultLang == "" {
		defaultLang = "he"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PluxeeService{
		session:     session,
		exec:        exec,
		resolver:    resolver,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// Login forces an interactive login and returns the fresh credential.
func (s *PluxeeService) Login(ctx context.Context) (model.Credential, error) {
	return s.session.Login(ctx)
}

// Status reports the session state without triggering a login.
func (s *PluxeeService) Status(ctx context.Context) model.SessionStatus {
	return s.session.Status(ctx)
}

// UserInfo fetches the profile. As a side effect it resolves the area hash
// when it is not known yet; that step never fails the call.
func (s *PluxeeService) UserInfo(ctx context.Context) (json.RawMessage, model.UserInfo, error) {
	resp, err := s.exec.Execute(ctx, model.Request{
		Method: http.MethodGet,
		Path:   "api/prx_user_info.py",
		Query:  url.Values{"version": {"0"}},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch user info: %w", err)
	}

	info := model.ParseUserInfo(resp.Body)
	s.resolver.Resolve(ctx, info)

	return json.RawMessage(resp.Body), info, nil
}

// BudgetSummary returns {budget, budget_balance, cycle} from the profile.
func (s *PluxeeService) BudgetSummary(ctx context.Context) (model.BudgetSummary, error) {
	_, info, err := s.UserInfo(ctx)
	if err != nil {
		return model.BudgetSummary{}, err
	}
	return info.BudgetSummary(), nil
}

// OrdersHistory returns the user's deals between fromDate and toDate
// (inclusive, DD/MM/YYYY).
func (s *PluxeeService) OrdersHistory(ctx context.Context, fromDate, toDate string) (model.Result, error) {
	from, err := time.Parse(model.OrderDateLayout, fromDate)
	if err != nil {
		return model.ProblemResult(model.ProblemInvalidDate, fmt.Sprintf("from_date %q must be DD/MM/YYYY", fromDate)), nil
	}
	to, err := time.Parse(model.OrderDateLayout, toDate)
	if err != nil {
		return model.ProblemResult(model.ProblemInvalidDate, fmt.Sprintf("to_date %q must be DD/MM/YYYY", toDate)), nil
	}
	if to.Before(from) {
		return model.ProblemResult(model.ProblemInvalidDate, "to_date must not be before from_date"), nil
	}

	resp, err := s.exec.Execute(ctx, model.Request{
		Method: http.MethodPost,
		Path:   "api/main.py",
		Body: map[string]string{
			"from_date": fromDate,
			"to_date":   toDate,
			"type":      "prx_user_deals",
		},
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("fetch orders history: %w", err)
	}
	return model.PayloadResult(resp.Body), nil
}

// NearbyRestaurants lists restaurants around the user's locality. The profile
// is fetched first so that the area hash gets resolved if it is not known.
func (s *PluxeeService) NearbyRestaurants(ctx context.Context, lang string) (model.Result, error) {
	lang = s.langOrDefault(lang)

	if _, _, err := s.UserInfo(ctx); err != nil {
		return model.Result{}, err
	}

	areaHash, ok := s.session.AreaHash(ctx)
	if !ok {
		return model.ProblemResult(model.ProblemMissingAreaHash,
			"Area hash not found. Ensure you've logged in and that we could resolve your default address."), nil
	}

	resp, err := s.exec.Execute(ctx, model.Request{
		Method: http.MethodGet,
		Path:   "api/rest_scan.py",
		Query:  url.Values{"hash": {areaHash}, "lang": {lang}},
		Lang:   lang,
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("fetch nearby restaurants: %w", err)
	}
	return model.PayloadResult(resp.Body), nil
}

// RestaurantMenu fetches the menu tree of one restaurant using the company
// and address ids from the profile.
func (s *PluxeeService) RestaurantMenu(ctx context.Context, q model.MenuQuery) (model.Result, error) {
	lang := s.langOrDefault(q.Lang)
	if q.OrderType == 0 {
		q.OrderType = model.DefaultOrderType
	}
	if q.ElementTypeDeep == 0 {
		q.ElementTypeDeep = model.DefaultElementTypeDeep
	}

	_, info, err := s.UserInfo(ctx)
	if err != nil {
		return model.Result{}, err
	}

	compID, hasComp := info.CompanyID()
	addrID, hasAddr := info.AddressID()
	if !hasComp || !hasAddr {
		s.logger.Info("menu lookup missing profile identifiers", "has_company", hasComp, "has_address", hasAddr)
		return model.ProblemResult(model.ProblemMissingIDs,
			"Could not determine company or address id from user info. Please login and try again."), nil
	}

	resp, err := s.exec.Execute(ctx, model.Request{
		Method: http.MethodGet,
		Path:   "api/rest_menu_tree.py",
		Query: url.Values{
			"restaurant_id":     {strconv.FormatInt(q.RestaurantID, 10)},
			"comp_id":           {strconv.FormatInt(compID, 10)},
			"order_type":        {strconv.Itoa(q.OrderType)},
			"element_type_deep": {strconv.Itoa(q.ElementTypeDeep)},
			"lang":              {lang},
			"address_id":        {strconv.FormatInt(addrID, 10)},
		},
		Lang: lang,
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("fetch restaurant menu %d: %w", q.RestaurantID, err)
	}
	return model.PayloadResult(resp.Body), nil
}

func (s *PluxeeService) langOrDefault(lang string) string {
	if lang == "" {
		return s.defaultLang
	}
	return lang
}
