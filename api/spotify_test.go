package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

func fullTrackJSON(id, name string) map[string]any {
	return map[string]any{
		"id":      id,
		"name":    name,
		"type":    "track",
		"artists": []map[string]any{{"id": "ar1", "name": "Band"}, {"id": "ar2", "name": "Guest"}},
		"album": map[string]any{
			"name":   "Album",
			"images": []map[string]any{{"url": "https://img.example/cover.jpg", "height": 640, "width": 640}},
		},
	}
}

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *SpotifyCatalog {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/"))
	return NewSpotifyCatalogWithClient(client, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestSpotifyCatalogTrack(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tracks/abc123" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, fullTrackJSON("abc123", "Song"))
	})

	track, err := catalog.Track(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", track.ID)
	assert.Equal(t, "Song", track.Name)
	assert.Equal(t, []string{"Band", "Guest"}, track.Artists)
	assert.Equal(t, "Album", track.Album)
	assert.Equal(t, []string{"https://img.example/cover.jpg"}, track.Images)
}

func TestSpotifyCatalogTrackNotFound(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"error": map[string]any{"status": 404, "message": "Non existing id"}})
	})

	_, err := catalog.Track(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSpotifyCatalogPlaylist(t *testing.T) {
	catalog := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tracks"):
			writeJSON(w, map[string]any{
				"total": 3,
				"items": []map[string]any{
					{"track": fullTrackJSON("t1", "First")},
					{"track": nil},
					{"is_local": true, "track": fullTrackJSON("", "Local File")},
				},
			})
		case r.URL.Path == "/playlists/pl1":
			writeJSON(w, map[string]any{"id": "pl1", "name": "Road Trip"})
		default:
			http.NotFound(w, r)
		}
	})

	collection, err := catalog.Playlist(context.Background(), "pl1")
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", collection.Name)
	require.Len(t, collection.Members, 3)
	assert.Equal(t, "t1", collection.Members[0].ID)
	assert.Empty(t, collection.Members[1].ID)
	assert.Empty(t, collection.Members[2].ID)
	assert.Equal(t, "Local File", collection.Members[2].Name)
}
