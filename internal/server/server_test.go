package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/siteclone/internal/capture"
	"github.com/v0xg/siteclone/internal/pipeline"
	"github.com/v0xg/siteclone/internal/store"
)

type fakePipeline struct {
	summary    pipeline.CaptureSummary
	captureErr error
	clone      pipeline.CloneResult
	cloneErr   error
	summaries  []pipeline.CaptureSummary

	gotURL string
	gotID  string
}

func (f *fakePipeline) StartCapture(ctx context.Context, url string) (pipeline.CaptureSummary, error) {
	f.gotURL = url
	return f.summary, f.captureErr
}

func (f *fakePipeline) FinishClone(ctx context.Context, id string) (pipeline.CloneResult, error) {
	f.gotID = id
	return f.clone, f.cloneErr
}

func (f *fakePipeline) Summaries() []pipeline.CaptureSummary {
	return f.summaries
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebscrapeSuccess(t *testing.T) {
	fp := &fakePipeline{summary: pipeline.CaptureSummary{
		ID:                "cap-1",
		URL:               "https://example.com",
		Title:             "Example Domain",
		HTMLContentLength: 1256,
		ScreenshotURL:     "/public/screenshots/cap-1.png",
		AssetsCount:       capture.AssetInventory{Links: 1},
	}}
	router := New(fp, t.TempDir(), nil).Router()

	rec := postJSON(t, router, "/webscrape", `{"url":"https://example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", fp.gotURL)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cap-1", got["id"])
	assert.Equal(t, "Example Domain", got["title"])
	assert.Equal(t, float64(1256), got["html_content_length"])
	counts := got["assets_count"].(map[string]any)
	assert.Equal(t, float64(0), counts["images"])
	assert.Equal(t, float64(1), counts["links"])
}

func TestWebscrapeInvalidBody(t *testing.T) {
	router := New(&fakePipeline{}, t.TempDir(), nil).Router()
	rec := postJSON(t, router, "/webscrape", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestWebscrapeErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid url", fmt.Errorf("%w: bad", capture.ErrInvalidURL), http.StatusBadRequest},
		{"navigation timeout", fmt.Errorf("%w: slow", capture.ErrNavigationTimeout), http.StatusGatewayTimeout},
		{"navigation error", fmt.Errorf("%w: dns", capture.ErrNavigation), http.StatusBadGateway},
		{"render error", fmt.Errorf("%w: crash", capture.ErrRender), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(tt *testing.T) {
			router := New(&fakePipeline{captureErr: tc.err}, tt.TempDir(), nil).Router()
			rec := postJSON(tt, router, "/webscrape", `{"url":"https://example.com"}`)
			assert.Equal(tt, tc.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(tt, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(tt, body["detail"])
		})
	}
}

func TestCloneSuccess(t *testing.T) {
	fp := &fakePipeline{clone: pipeline.CloneResult{
		Success:    true,
		ClonedHTML: "<!DOCTYPE html>\n<html><body>clone</body></html>",
	}}
	router := New(fp, t.TempDir(), nil).Router()

	rec := postJSON(t, router, "/clone-website", `{"url_id":"cap-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cap-1", fp.gotID)

	var got pipeline.CloneResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Contains(t, got.ClonedHTML, "<html>")
}

func TestCloneUnknownID(t *testing.T) {
	fp := &fakePipeline{cloneErr: fmt.Errorf("%w: no capture for id %q", store.ErrNotFound, "nope")}
	router := New(fp, t.TempDir(), nil).Router()

	rec := postJSON(t, router, "/clone-website", `{"url_id":"nope"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var got pipeline.CloneResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Success)
	assert.Contains(t, got.Message, "no capture")
	assert.Empty(t, got.ClonedHTML)
}

func TestCloneModelFailurePassesThrough(t *testing.T) {
	fp := &fakePipeline{clone: pipeline.CloneResult{
		Success: false,
		Message: "reconstruct: model call timed out: budget exceeded",
	}}
	router := New(fp, t.TempDir(), nil).Router()

	rec := postJSON(t, router, "/clone-website", `{"url_id":"cap-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var got pipeline.CloneResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Success)
	assert.Contains(t, got.Message, "timed out")
	assert.Empty(t, got.ClonedHTML)
}

func TestScrapedDataList(t *testing.T) {
	fp := &fakePipeline{summaries: []pipeline.CaptureSummary{
		{ID: "a"}, {ID: "b"},
	}}
	router := New(fp, t.TempDir(), nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/scraped-data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []pipeline.CaptureSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}
