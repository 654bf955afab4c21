package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/siteclone/internal/capture"
	"github.com/v0xg/siteclone/internal/reconstruct"
	"github.com/v0xg/siteclone/internal/store"
)

type fakeCapturer struct {
	snap *capture.Capture
	err  error
}

func (f *fakeCapturer) Capture(ctx context.Context, url string) (*capture.Capture, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *f.snap
	c.SourceURL = url
	return &c, nil
}

type fakeReconstructor struct {
	result reconstruct.Result
	got    *capture.Capture
}

func (f *fakeReconstructor) Reconstruct(ctx context.Context, c *capture.Capture) reconstruct.Result {
	f.got = c
	return f.result
}

func exampleSnapshot() *capture.Capture {
	return &capture.Capture{
		ID:            "cap-1",
		Title:         "Example Domain",
		RawHTML:       "<html><body><h1>Example Domain</h1></body></html>",
		Assets:        capture.AssetInventory{Links: 1},
		ScreenshotRef: "/public/screenshots/cap-1.png",
	}
}

func TestStartCaptureStoresAndSummarizes(t *testing.T) {
	st := store.New(0)
	coord := New(&fakeCapturer{snap: exampleSnapshot()}, st, &fakeReconstructor{}, nil)

	summary, err := coord.StartCapture(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "cap-1", summary.ID)
	assert.Equal(t, "https://example.com", summary.URL)
	assert.Equal(t, "Example Domain", summary.Title)
	assert.Equal(t, len(exampleSnapshot().RawHTML), summary.HTMLContentLength)
	assert.Equal(t, 0, summary.AssetsCount.Images)
	assert.Equal(t, 1, summary.AssetsCount.Links)
	assert.Equal(t, "/public/screenshots/cap-1.png", summary.ScreenshotURL)

	stored, err := st.Get(summary.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, stored.ID)
}

func TestFailedCaptureStoresNothing(t *testing.T) {
	st := store.New(0)
	capErr := fmt.Errorf("%w: %q", capture.ErrInvalidURL, "not a url")
	coord := New(&fakeCapturer{err: capErr}, st, &fakeReconstructor{}, nil)

	_, err := coord.StartCapture(context.Background(), "not a url")
	require.Error(t, err)
	assert.ErrorIs(t, err, capture.ErrInvalidURL)
	assert.Equal(t, 0, st.Len(), "no partial capture may be retrievable")
}

func TestFinishCloneSuccess(t *testing.T) {
	st := store.New(0)
	rec := &fakeReconstructor{result: reconstruct.Result{
		Success:    true,
		ClonedHTML: "<!DOCTYPE html>\n<html><body>clone</body></html>",
	}}
	coord := New(&fakeCapturer{snap: exampleSnapshot()}, st, rec, nil)

	summary, err := coord.StartCapture(context.Background(), "https://example.com")
	require.NoError(t, err)

	result, err := coord.FinishClone(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.ClonedHTML, "<html>")
	assert.Empty(t, result.Message)
	require.NotNil(t, rec.got)
	assert.Equal(t, summary.ID, rec.got.ID)
}

func TestFinishCloneUnknownID(t *testing.T) {
	coord := New(&fakeCapturer{snap: exampleSnapshot()}, store.New(0), &fakeReconstructor{}, nil)

	_, err := coord.FinishClone(context.Background(), "never-issued")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFinishCloneModelFailureIsAResultNotAnError(t *testing.T) {
	st := store.New(0)
	rec := &fakeReconstructor{result: reconstruct.Result{
		Success: false,
		Message: "reconstruct: model call timed out: budget exceeded",
	}}
	coord := New(&fakeCapturer{snap: exampleSnapshot()}, st, rec, nil)

	summary, err := coord.StartCapture(context.Background(), "https://example.com")
	require.NoError(t, err)

	result, err := coord.FinishClone(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "timed out")
	assert.Empty(t, result.ClonedHTML)
}

func TestSummariesListAllCaptures(t *testing.T) {
	st := store.New(0)
	coord := New(&fakeCapturer{snap: exampleSnapshot()}, st, &fakeReconstructor{}, nil)

	// Distinct ids per put even for the same page.
	snap := exampleSnapshot()
	snap.ID = ""
	first := *snap
	second := *snap
	st.Put(&first)
	st.Put(&second)

	summaries := coord.Summaries()
	require.Len(t, summaries, 2)
	assert.NotEqual(t, summaries[0].ID, summaries[1].ID)
}
