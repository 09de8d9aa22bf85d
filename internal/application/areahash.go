package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

// Locality scan parameters sent when deriving the area hash.
const (
	scanOrderType = 1
	scanRadius    = 9000
)

// RequestExecutor performs one outbound call. Executor implements it.
type RequestExecutor interface {
	Execute(ctx context.Context, req model.Request) (*model.Response, error)
}

// AreaHashSession is the slice of SessionManager the resolver needs.
type AreaHashSession interface {
	AreaHash(ctx context.Context) (string, bool)
	SetAreaHash(ctx context.Context, areaHash string) error
}

// AreaHashResolver derives the locality hash from the user's profile. The hash
// is computed once per session; concurrent resolutions for the same address
// share a single upstream scan.
type AreaHashResolver struct {
	session     AreaHashSession
	exec        RequestExecutor
	defaultLang string
	group       singleflight.Group
	logger      *slog.Logger
}

// NewAreaHashResolver creates an AreaHashResolver.
func NewAreaHashResolver(session AreaHashSession, exec RequestExecutor, defaultLang string, logger *slog.Logger) *AreaHashResolver {
	if defaultLang == "" {
		defaultLang = "he"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AreaHashResolver{
		session:     session,
		exec:        exec,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// Resolve returns the cached area hash, or derives it from info. A profile
// without a positive address id, or a failed scan, yields ("", false); the
// caller is expected to degrade gracefully.
func (r *AreaHashResolver) Resolve(ctx context.Context, info model.UserInfo) (string, bool) {
	if h, ok := r.session.AreaHash(ctx); ok {
		return h, true
	}

	addrID, ok := info.AddressID()
	if !ok {
		r.logger.Info("no positive address id in profile, area hash unavailable")
		return "", false
	}

	lang := info.DefaultLang(r.defaultLang)
	// The shared scan outlives the caller that started it; each caller only
	// stops waiting on its own cancellation.
	ch := r.group.DoChan(strconv.FormatInt(addrID, 10), func() (any, error) {
		return r.scan(context.WithoutCancel(ctx), addrID, lang), nil
	})

	select {
	case res := <-ch:
		h, _ := res.Val.(string)
		return h, h != ""
	case <-ctx.Done():
		return "", false
	}
}

func (r *AreaHashResolver) scan(ctx context.Context, addrID int64, lang string) string {
	// A scan that finished just before this one joined the group may have
	// already stored the hash.
	if h, ok := r.session.AreaHash(ctx); ok {
		return h
	}

	resp, err := r.exec.Execute(ctx, model.Request{
		Method: http.MethodPost,
		Path:   "api/main.py",
		Body: map[string]any{
			"addr_id":          addrID,
			"order_type":       scanOrderType,
			"radius":           scanRadius,
			"type":             "rest_scan",
			"get_hash":         true,
			"has_15mins_grace": 0,
		},
		Lang: lang,
	})
	if err != nil {
		r.logger.Warn("area hash scan failed", "addr_id", addrID, "error", err)
		return ""
	}

	h, err := extractAreaHash(resp.Body)
	if err != nil {
		r.logger.Warn("area hash missing from scan response", "addr_id", addrID, "error", err)
		return ""
	}

	if err := r.session.SetAreaHash(ctx, h); err != nil {
		var perr *model.PersistenceError
		if !errors.As(err, &perr) {
			r.logger.Warn("storing area hash failed", "error", err)
			return ""
		}
		r.logger.Warn("area hash resolved but not persisted", "error", err)
	}

	r.logger.Info("area hash resolved", "addr_id", addrID)
	return h
}

// extractAreaHash reads "hash", falling back to "area_hash".
func extractAreaHash(body []byte) (string, error) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode scan response: %w", err)
	}

	for _, key := range []string{"hash", "area_hash"} {
		switch v := data[key].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	}
	return "", errors.New("no hash or area_hash field")
}
