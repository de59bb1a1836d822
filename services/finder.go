package services

import (
	"context"
	"fmt"
	"strings"

	"spotigrab/types"
)

// MatchFinder locates a playable source for a track
type MatchFinder struct {
	searcher Searcher
}

// NewMatchFinder creates a finder backed by searcher
func NewMatchFinder(searcher Searcher) *MatchFinder {
	return &MatchFinder{searcher: searcher}
}

// SearchPhrase is "<artist> <title>" for resolved tracks and the raw query otherwise
func SearchPhrase(meta *types.TrackMetadata, ref types.Reference) string {
	if meta != nil && ref.IsCatalog() {
		return strings.TrimSpace(meta.Artist + " " + meta.Title)
	}
	return ref.Query
}

// Find runs a single search and accepts the first result without further ranking
func (f *MatchFinder) Find(ctx context.Context, phrase string) (types.SourceLocator, error) {
	results, err := f.searcher.Search(ctx, phrase)
	if err != nil {
		return types.SourceLocator{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(results) == 0 {
		return types.SourceLocator{}, fmt.Errorf("%w for %q", ErrNoResults, phrase)
	}
	return results[0], nil
}
