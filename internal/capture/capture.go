// Package capture drives a headless browser to snapshot a live page:
// final URL, title, serialized DOM, asset inventory and a full-page
// screenshot persisted to disk.
package capture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"
)

// Options configures the capture engine.
type Options struct {
	Width  int
	Height int

	// NavTimeout bounds navigation plus the load event. Default: 90s.
	NavTimeout time.Duration

	// SettleTimeout caps the post-load network-idle wait, so pages with
	// persistent connections (websockets, polling) don't hang a capture.
	// Default: 5s.
	SettleTimeout time.Duration

	// ScreenshotDir is where screenshot PNGs are written. Default:
	// "public/screenshots".
	ScreenshotDir string

	// ScreenshotPrefix is the public URL path the dir is served under.
	// Default: "/public/screenshots".
	ScreenshotPrefix string

	// NewID generates capture identifiers. Default: random UUIDs, so
	// repeated captures of the same URL stay independent entries.
	NewID func() string
}

func (o *Options) defaults() {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 720
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 90 * time.Second
	}
	if o.SettleTimeout <= 0 {
		o.SettleTimeout = 5 * time.Second
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = filepath.Join("public", "screenshots")
	}
	if o.ScreenshotPrefix == "" {
		o.ScreenshotPrefix = "/public/screenshots"
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
}

// Engine captures pages using a shared browser handle. The browser is
// passed in at construction and owned by the caller; each capture runs
// in its own page, so concurrent captures don't serialize on a lock.
type Engine struct {
	browser *rod.Browser
	opts    Options
}

// NewEngine creates a capture engine on top of an already-connected browser.
func NewEngine(browser *rod.Browser, opts Options) *Engine {
	opts.defaults()
	return &Engine{browser: browser, opts: opts}
}

// Launch starts a local headless Chromium and connects to it.
func Launch() (*rod.Browser, error) {
	bin, _ := launcher.LookPath()
	u, err := launcher.New().Bin(bin).Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return browser, nil
}

// Capture navigates to rawURL, waits for the page to settle and extracts
// a Capture. The URL is validated before any browser work; a failed
// capture never leaves a partial record or screenshot reference behind.
func (e *Engine) Capture(ctx context.Context, rawURL string) (*Capture, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	id := e.opts.NewID()

	page, err := stealth.Page(e.browser)
	if err != nil {
		return nil, fmt.Errorf("%w: open page: %v", ErrRender, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             e.opts.Width,
		Height:            e.opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: set viewport: %v", ErrRender, err)
	}

	nav := page.Timeout(e.opts.NavTimeout)
	if err := nav.Navigate(rawURL); err != nil {
		return nil, classifyNavErr(err)
	}
	if err := nav.WaitLoad(); err != nil {
		return nil, classifyNavErr(err)
	}

	// Bounded network-idle wait. Important for SPAs, harmless for
	// static pages.
	page.Timeout(e.opts.SettleTimeout).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()

	finalURL, err := evalString(page, `() => window.location.href`)
	if err != nil {
		return nil, fmt.Errorf("%w: read location: %v", ErrRender, err)
	}
	title, err := evalString(page, `() => document.title`)
	if err != nil {
		return nil, fmt.Errorf("%w: read title: %v", ErrRender, err)
	}

	rawHTML, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: serialize dom: %v", ErrRender, err)
	}
	if rawHTML == "" {
		return nil, fmt.Errorf("%w: page produced no content", ErrRender)
	}

	ref, err := e.screenshot(page, id)
	if err != nil {
		return nil, err
	}

	return &Capture{
		ID:            id,
		SourceURL:     finalURL,
		Title:         title,
		RawHTML:       rawHTML,
		Assets:        CountAssets(rawHTML),
		ScreenshotRef: ref,
	}, nil
}

// screenshot writes one full-page PNG named by the capture id and
// returns its public URL path.
func (e *Engine) screenshot(page *rod.Page, id string) (string, error) {
	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("%w: screenshot: %v", ErrRender, err)
	}

	if err := os.MkdirAll(e.opts.ScreenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: screenshot dir: %v", ErrRender, err)
	}
	name := id + ".png"
	if err := os.WriteFile(filepath.Join(e.opts.ScreenshotDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: persist screenshot: %v", ErrRender, err)
	}

	return path.Join(e.opts.ScreenshotPrefix, name), nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q: need an absolute http(s) url", ErrInvalidURL, rawURL)
	}
	return nil
}

func classifyNavErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrNavigation, err)
}

func evalString(page *rod.Page, js string) (string, error) {
	obj, err := page.Eval(js)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}
