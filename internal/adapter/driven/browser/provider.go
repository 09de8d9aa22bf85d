// Package browser implements the LoginProvider port by driving a local
// Chrome through the DevTools protocol. The user completes the login (OTP
// included) in the opened window; the provider only watches for the session
// cookie.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

var _ driven.LoginProvider = (*Provider)(nil)

// tokenCookie is the cookie that carries the session token.
const tokenCookie = "token"

// Options configures a Provider.
type Options struct {
	// UserDataDir is the persistent Chrome profile, so an earlier login can
	// be reused without another OTP round.
	UserDataDir  string
	CookieURLs   []string
	PollInterval time.Duration
	Headless     bool
	// ExecPath overrides Chrome discovery.
	ExecPath string
}

// Provider opens a browser at the start URL and polls its cookie jar until
// the token cookie appears.
type Provider struct {
	opts   Options
	logger *slog.Logger
}

// NewProvider creates a Provider.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{opts: opts, logger: logger}
}

// ObtainToken blocks until the token cookie is set or timeout elapses. A
// missing browser maps to model.ErrLoginUnavailable; expiry is reported as
// context.DeadlineExceeded.
func (p *Provider) ObtainToken(ctx context.Context, startURL string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if p.opts.UserDataDir != "" {
		if err := os.MkdirAll(p.opts.UserDataDir, 0o700); err != nil {
			return "", fmt.Errorf("create browser profile: %w", err)
		}
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", p.opts.Headless))
	if p.opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(filepath.Clean(p.opts.UserDataDir)))
	}
	if p.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(p.opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	p.logger.Info("opening browser for login", "url", startURL, "headless", p.opts.Headless)
	if err := chromedp.Run(browserCtx, chromedp.Navigate(startURL)); err != nil {
		return "", p.launchError(ctx, err)
	}

	token, err := pollToken(ctx, p.opts.PollInterval, func(pollCtx context.Context) ([]*network.Cookie, error) {
		var cookies []*network.Cookie
		err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(c context.Context) error {
			var err error
			cookies, err = network.GetCookies().WithURLs(p.opts.CookieURLs).Do(c)
			return err
		}))
		return cookies, err
	}, p.logger)
	if err != nil {
		return "", err
	}

	p.logger.Info("token cookie captured", "token", model.Redact(token))
	return token, nil
}

func (p *Provider) launchError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: chrome executable not found (set PLUXEE_BROWSER_PATH): %w", model.ErrLoginUnavailable, err)
	}
	return fmt.Errorf("start browser: %w", err)
}

// cookieReader returns the current cookies for the watched URLs.
type cookieReader func(ctx context.Context) ([]*network.Cookie, error)

// pollToken reads cookies every interval until a non-empty token cookie shows
// up or ctx is done. Read errors are logged and retried; the browser window
// may be mid-navigation.
func pollToken(ctx context.Context, interval time.Duration, read cookieReader, logger *slog.Logger) (string, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		cookies, err := read(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			logger.Debug("reading cookies failed, retrying", "error", err)
		} else if token := findTokenCookie(cookies); token != "" {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// findTokenCookie returns the first non-empty token cookie value.
func findTokenCookie(cookies []*network.Cookie) string {
	for _, c := range cookies {
		if c != nil && c.Name == tokenCookie && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
