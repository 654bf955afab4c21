// Package reconstruct feeds a stored capture to a generative model and
// validates the returned HTML document.
package reconstruct

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nfnt/resize"
	"github.com/v0xg/siteclone/internal/capture"
)

// Options configures the reconstruction engine.
type Options struct {
	// Timeout bounds one model round-trip. Default: 120s.
	Timeout time.Duration

	// MaxImageWidth is the width screenshots are downscaled to before
	// being attached to the prompt, keeping them inside provider image
	// limits. Default: 1568.
	MaxImageWidth uint

	// ScreenshotRoot is the directory screenshot references resolve
	// under. Default: current directory.
	ScreenshotRoot string

	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}
	if o.MaxImageWidth == 0 {
		o.MaxImageWidth = 1568
	}
	if o.ScreenshotRoot == "" {
		o.ScreenshotRoot = "."
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Result is the outcome of one reconstruction attempt. ClonedHTML is
// set only on success; Message only on failure.
type Result struct {
	Success    bool
	ClonedHTML string
	Message    string
}

// Engine turns captures into cloned HTML via a Provider. Stateless
// between calls: no conversation state survives a request, and each
// request is a single model attempt with no internal retries.
type Engine struct {
	provider Provider
	opts     Options
}

// NewEngine creates a reconstruction engine on top of a provider.
func NewEngine(provider Provider, opts Options) *Engine {
	opts.defaults()
	return &Engine{provider: provider, opts: opts}
}

// Reconstruct builds a prompt from the capture, invokes the model once
// and validates the reply. The capture is only read, never mutated.
func (e *Engine) Reconstruct(ctx context.Context, c *capture.Capture) Result {
	screenshot := e.loadScreenshot(c)
	prompt := BuildPrompt(c, screenshot)

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	raw, err := e.provider.GenerateHTML(ctx, prompt)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	doc, err := ExtractDocument(raw)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	return Result{Success: true, ClonedHTML: doc}
}

// loadScreenshot reads and downscales the capture's screenshot. The
// screenshot is an optional visual reference, so every failure here
// degrades to a text-only prompt instead of failing the request.
func (e *Engine) loadScreenshot(c *capture.Capture) []byte {
	if c.ScreenshotRef == "" {
		return nil
	}

	path := filepath.Join(e.opts.ScreenshotRoot, filepath.FromSlash(strings.TrimPrefix(c.ScreenshotRef, "/")))
	data, err := os.ReadFile(path)
	if err != nil {
		e.opts.Logger.Warn("screenshot unavailable, continuing without it", "path", path, "error", err)
		return nil
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		e.opts.Logger.Warn("screenshot not decodable, continuing without it", "path", path, "error", err)
		return nil
	}

	if uint(img.Bounds().Dx()) <= e.opts.MaxImageWidth {
		return data
	}

	scaled := resize.Resize(e.opts.MaxImageWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		e.opts.Logger.Warn("screenshot re-encode failed, continuing without it", "path", path, "error", err)
		return nil
	}
	return buf.Bytes()
}
