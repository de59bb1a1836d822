package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spotigrab/metrics"
	"spotigrab/services"
	"spotigrab/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubDispatcher classifies like the real dispatcher but returns canned outcomes
type stubDispatcher struct {
	track types.TrackOutcome
	batch *types.BatchOutcome
}

func (d *stubDispatcher) Dispatch(_ context.Context, raw string, progress services.ProgressFunc) (types.Result, error) {
	ref := services.Classify(raw)
	switch ref.Kind {
	case types.KindCollection:
		return types.Result{Kind: ref.Kind, Batch: d.batch}, nil
	case types.KindTrack:
		outcome := d.track
		if progress != nil {
			progress(1, 1, outcome)
		}
		return types.Result{Kind: ref.Kind, Track: &outcome}, nil
	}
	return types.Result{Kind: types.KindInvalid}, services.ErrInvalidInput
}

// testHelper provides a router backed by a temporary download root
type testHelper struct {
	Router     *gin.Engine
	Root       string
	Dispatcher *stubDispatcher
	JobQueue   services.JobQueue
}

func newTestHelper(t *testing.T) *testHelper {
	t.Helper()
	root := t.TempDir()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveRequest(string(types.KindTrack))

	dispatcher := &stubDispatcher{
		track: types.TrackOutcome{Status: types.StatusSuccess, Title: "Song", Artist: "Band", FilePath: root + "/Band - Song.mp3"},
		batch: &types.BatchOutcome{Status: types.StatusError, Message: services.MsgPlaylistFailed, Tracks: []types.TrackOutcome{}},
	}
	jq := services.NewJobQueue(1, dispatcher, nil, m, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	jq.Start(ctx)

	fs := services.NewFileService(logger)
	r := gin.New()
	SetupRoutes(r, Handlers{
		Health:    NewHealthHandler(root),
		Downloads: NewDownloadHandler(dispatcher, jq, nil, fs, root, logger),
		Files:     NewFileHandler(fs, root, logger),
		Gatherer:  reg,
	})

	return &testHelper{Router: r, Root: root, Dispatcher: dispatcher, JobQueue: jq}
}

func (h *testHelper) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func (h *testHelper) doJSON(t *testing.T, method, target string, out any) *httptest.ResponseRecorder {
	t.Helper()
	w := h.do(t, method, target)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	return w
}
