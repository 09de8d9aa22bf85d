// Package pluxee implements the PluxeeTransport port over net/http.
package pluxee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

var _ driven.PluxeeTransport = (*Transport)(nil)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// Options configures a Transport.
type Options struct {
	BaseURL       string
	ApplicationID string
	// SiteURL is sent as origin and referer.
	SiteURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Transport sends requests to the Pluxee consumer API with the headers the
// consumer web site uses.
type Transport struct {
	client  *http.Client
	baseURL *url.URL
	appID   string
	origin  string
	referer string
}

// NewTransport creates a Transport.
func NewTransport(opts Options) (*Transport, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	referer := opts.SiteURL
	origin := strings.TrimSuffix(referer, "/")

	return &Transport{
		client:  client,
		baseURL: base,
		appID:   opts.ApplicationID,
		origin:  origin,
		referer: referer,
	}, nil
}

// Send performs req and returns the status and raw body. Non-2xx statuses are
// not errors at this layer.
func (t *Transport) Send(ctx context.Context, req model.Request, token string) (*model.Response, error) {
	target, err := t.resolve(req)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	t.setHeaders(httpReq, token, req.Lang)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &model.Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func (t *Transport) resolve(req model.Request) (string, error) {
	rel, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", req.Path, err)
	}
	u := t.baseURL.ResolveReference(rel)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String(), nil
}

func (t *Transport) setHeaders(r *http.Request, token, lang string) {
	h := r.Header
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Content-Type", "application/json; charset=utf-8")
	if t.appID != "" {
		h.Set("Application-Id", t.appID)
	}
	if t.origin != "" {
		h.Set("Origin", t.origin)
		h.Set("Referer", t.referer)
	}
	if token != "" {
		h.Set("Cookie", "token="+token)
	}
	if lang != "" {
		h.Set("Accept-Language", lang)
	}
}
