package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spotigrab/services"
	"spotigrab/types"
)

func TestRootAndHealth(t *testing.T) {
	h := newTestHelper(t)

	var root map[string]any
	w := h.doJSON(t, http.MethodGet, "/", &root)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "downloader is running.", root["message"])

	var health map[string]any
	w = h.doJSON(t, http.MethodGet, "/health", &health)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, h.Root, health["download_location"])
}

func TestDownloadEndpoint(t *testing.T) {
	h := newTestHelper(t)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedBody   map[string]any
	}{
		{
			name:           "track",
			query:          "https://open.spotify.com/track/abc123?si=x",
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]any{"status": "success", "title": "Song", "artist": "Band"},
		},
		{
			name:           "playlist failure keeps 200",
			query:          "spotify:playlist:pl1",
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]any{"status": "error", "message": "failed to get playlist"},
		},
		{
			name:           "album link searched as text",
			query:          "https://open.spotify.com/album/abc",
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]any{"status": "success"},
		},
		{
			name:           "broken playlist is invalid",
			query:          "https://open.spotify.com/playlist/",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"status": "error", "message": "invalid url"},
		},
		{
			name:           "missing query",
			query:          "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]any{"status": "error", "message": "invalid url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			w := h.doJSON(t, http.MethodGet, "/download?query="+url.QueryEscape(tt.query), &body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			for k, v := range tt.expectedBody {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

func TestServeDownload(t *testing.T) {
	h := newTestHelper(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.Root, "Road Trip.zip"), []byte("PK"), 0o644))

	w := h.do(t, http.MethodGet, "/downloads/Road%20Trip.zip")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "PK", w.Body.String())

	w = h.do(t, http.MethodGet, "/downloads/missing.mp3")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodGet, "/downloads/..")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListFiles(t *testing.T) {
	h := newTestHelper(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.Root, "Band - Song.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(h.Root, "Mix.zip"), []byte("PK"), 0o644))

	var body struct {
		Files    []types.AudioFile `json:"files"`
		Archives []types.Archive   `json:"archives"`
		Count    int               `json:"count"`
	}
	w := h.doJSON(t, http.MethodGet, "/api/files", &body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Files, 1)
	assert.Equal(t, "Band", body.Files[0].Metadata.Artist)
	require.Len(t, body.Archives, 1)
	assert.Equal(t, "/downloads/Mix.zip", body.Archives[0].DownloadLink)
}

func TestJobEndpoints(t *testing.T) {
	h := newTestHelper(t)

	var queued struct {
		Job types.DownloadJob `json:"job"`
	}
	w := h.doJSON(t, http.MethodPost, "/api/jobs?query="+url.QueryEscape("Band - Song"), &queued)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, queued.Job.ID)

	require.Eventually(t, func() bool {
		job, _ := h.JobQueue.GetJob(queued.Job.ID)
		return job.Status == types.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	var got struct {
		Job types.DownloadJob `json:"job"`
	}
	w = h.doJSON(t, http.MethodGet, "/api/jobs/"+queued.Job.ID, &got)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.JobStatusCompleted, got.Job.Status)

	var all struct {
		Total int `json:"total"`
	}
	h.doJSON(t, http.MethodGet, "/api/jobs", &all)
	assert.Equal(t, 1, all.Total)

	w = h.do(t, http.MethodDelete, "/api/jobs/"+queued.Job.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code, "completed jobs cannot be cancelled")

	w = h.do(t, http.MethodGet, "/api/jobs/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/api/jobs?query="+url.QueryEscape("spotify:playlist:"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/api/ws/jobs/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHelper(t)
	w := h.do(t, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spotigrab_requests_total")
}

type unreachableCatalog struct{ calls int }

func (c *unreachableCatalog) Track(context.Context, string) (*types.CatalogTrack, error) {
	c.calls++
	return nil, errors.New("catalog should not be called")
}

func (c *unreachableCatalog) Playlist(context.Context, string) (*types.Collection, error) {
	c.calls++
	return nil, errors.New("catalog should not be called")
}

type unusedStage struct{}

func (unusedStage) Search(context.Context, string) ([]types.SourceLocator, error) { return nil, nil }
func (unusedStage) Fetch(context.Context, string, string, string) error           { return errors.New("unused") }
func (unusedStage) Tag(context.Context, string, types.TrackMetadata) error        { return nil }

func TestDownloadMalformedTrackReference(t *testing.T) {
	root := t.TempDir()
	logger := zap.NewNop()
	catalog := &unreachableCatalog{}
	pipeline := services.NewTrackPipeline(
		services.NewMetadataResolver(catalog),
		services.NewMatchFinder(unusedStage{}),
		services.NewAcquisitionEngine(unusedStage{}, "mp3"),
		unusedStage{},
		nil,
		logger,
	)
	dispatcher := services.NewDispatcher(pipeline, services.NewBatchOrchestrator(catalog, pipeline, root, 1, nil, logger), root, nil, logger)

	r := gin.New()
	r.GET("/download", NewDownloadHandler(dispatcher, nil, nil, services.NewFileService(logger), root, logger).Download)

	for _, query := range []string{"https://open.spotify.com/track/", "https://open.spotify.com/track/abc-123"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download?query="+url.QueryEscape(query), nil))

		assert.Equal(t, http.StatusOK, w.Code, query)
		assert.JSONEq(t, `{"status":"error","message":"failed to get metadata"}`, w.Body.String(), query)
	}
	assert.Zero(t, catalog.calls)
}
