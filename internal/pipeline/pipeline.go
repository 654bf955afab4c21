// Package pipeline sequences capture → store → reconstruct and owns the
// request/response contracts of the two-stage clone flow. It performs
// no business logic of its own beyond sequencing and error translation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/v0xg/siteclone/internal/capture"
	"github.com/v0xg/siteclone/internal/reconstruct"
	"github.com/v0xg/siteclone/internal/store"
)

// Capturer snapshots a live page.
type Capturer interface {
	Capture(ctx context.Context, url string) (*capture.Capture, error)
}

// Reconstructor turns a capture into cloned HTML.
type Reconstructor interface {
	Reconstruct(ctx context.Context, c *capture.Capture) reconstruct.Result
}

// CaptureSummary is the external shape of a successful capture. The raw
// HTML stays internal; only its length is reported.
type CaptureSummary struct {
	ID                string                 `json:"id"`
	URL               string                 `json:"url"`
	Title             string                 `json:"title"`
	HTMLContentLength int                    `json:"html_content_length"`
	ScreenshotURL     string                 `json:"screenshot_url,omitempty"`
	AssetsCount       capture.AssetInventory `json:"assets_count"`
}

// CloneResult is the external shape of a reconstruction outcome.
type CloneResult struct {
	Success    bool   `json:"success"`
	ClonedHTML string `json:"cloned_html,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Coordinator wires the capture engine, the capture store and the
// reconstruction engine together.
type Coordinator struct {
	capturer      Capturer
	store         *store.Store
	reconstructor Reconstructor
	log           *slog.Logger
}

// New creates a Coordinator. A nil logger selects slog.Default.
func New(capturer Capturer, st *store.Store, reconstructor Reconstructor, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		capturer:      capturer,
		store:         st,
		reconstructor: reconstructor,
		log:           log,
	}
}

// StartCapture captures url and stores the result. A failed capture is
// never stored, so no partial record is ever retrievable. The returned
// error is one of the capture package sentinels.
func (c *Coordinator) StartCapture(ctx context.Context, url string) (CaptureSummary, error) {
	snap, err := c.capturer.Capture(ctx, url)
	if err != nil {
		c.log.Warn("capture failed", "url", url, "error", err)
		return CaptureSummary{}, err
	}

	id := c.store.Put(snap)
	c.log.Info("capture stored", "id", id, "url", snap.SourceURL,
		"html_bytes", len(snap.RawHTML), "images", snap.Assets.Images)

	return summarize(snap), nil
}

// FinishClone reconstructs the capture stored under id. An unknown id
// returns store.ErrNotFound; a model-stage failure is not an error but
// a CloneResult with Success=false and a categorized message.
func (c *Coordinator) FinishClone(ctx context.Context, id string) (CloneResult, error) {
	snap, err := c.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CloneResult{}, fmt.Errorf("%w: no capture for id %q", store.ErrNotFound, id)
		}
		return CloneResult{}, err
	}

	res := c.reconstructor.Reconstruct(ctx, snap)
	if !res.Success {
		c.log.Warn("reconstruction failed", "id", id, "message", res.Message)
		return CloneResult{Success: false, Message: res.Message}, nil
	}

	c.log.Info("reconstruction done", "id", id, "cloned_bytes", len(res.ClonedHTML))
	return CloneResult{Success: true, ClonedHTML: res.ClonedHTML}, nil
}

// Summaries lists the stored captures, oldest first.
func (c *Coordinator) Summaries() []CaptureSummary {
	captures := c.store.List()
	out := make([]CaptureSummary, 0, len(captures))
	for _, snap := range captures {
		out = append(out, summarize(snap))
	}
	return out
}

func summarize(snap *capture.Capture) CaptureSummary {
	return CaptureSummary{
		ID:                snap.ID,
		URL:               snap.SourceURL,
		Title:             snap.Title,
		HTMLContentLength: len(snap.RawHTML),
		ScreenshotURL:     snap.ScreenshotRef,
		AssetsCount:       snap.Assets,
	}
}
