package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"spotigrab/types"
)

var errUpstream = errors.New("upstream unavailable")

type fakeCatalog struct {
	mu         sync.Mutex
	tracks     map[string]*types.CatalogTrack
	playlists  map[string]*types.Collection
	err        error
	trackCalls int
}

func (c *fakeCatalog) Track(_ context.Context, id string) (*types.CatalogTrack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trackCalls++
	if c.err != nil {
		return nil, c.err
	}
	track, ok := c.tracks[id]
	if !ok {
		return nil, errors.New("non existing id")
	}
	return track, nil
}

func (c *fakeCatalog) Playlist(_ context.Context, id string) (*types.Collection, error) {
	if c.err != nil {
		return nil, c.err
	}
	playlist, ok := c.playlists[id]
	if !ok {
		return nil, errors.New("non existing id")
	}
	return playlist, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []types.SourceLocator
	err     error
	phrases []string
}

func (s *fakeSearcher) Search(_ context.Context, phrase string) ([]types.SourceLocator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phrases = append(s.phrases, phrase)
	return s.results, s.err
}

// fakeFetcher writes dir/<name>.<ext> unless skipOutput is set. partial files are
// written before err is returned.
type fakeFetcher struct {
	mu         sync.Mutex
	ext        string
	err        error
	skipOutput bool
	partial    []string
	calls      int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, dir, name string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	for _, suffix := range f.partial {
		if err := os.WriteFile(filepath.Join(dir, name+suffix), []byte("partial"), 0o644); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	if f.skipOutput {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, name+"."+f.ext), []byte("fake audio payload"), 0o644)
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTagger struct {
	err   error
	paths []string
}

func (t *fakeTagger) Tag(_ context.Context, path string, _ types.TrackMetadata) error {
	t.paths = append(t.paths, path)
	return t.err
}

func oneResult() []types.SourceLocator {
	return []types.SourceLocator{{VideoID: "dQw4w9WgXcQ", URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}}
}

func newTestPipeline(catalog Catalog, searcher Searcher, fetcher Fetcher, tagger Tagger) *TrackPipeline {
	return NewTrackPipeline(
		NewMetadataResolver(catalog),
		NewMatchFinder(searcher),
		NewAcquisitionEngine(fetcher, "mp3"),
		tagger,
		nil,
		zap.NewNop(),
	)
}
