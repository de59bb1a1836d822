package services

import (
	"context"

	"spotigrab/types"
)

// Catalog is the music catalog provider (Spotify)
type Catalog interface {
	Track(ctx context.Context, id string) (*types.CatalogTrack, error)
	Playlist(ctx context.Context, id string) (*types.Collection, error)
}

// Searcher finds playable sources for a search phrase. An empty slice means no results.
type Searcher interface {
	Search(ctx context.Context, phrase string) ([]types.SourceLocator, error)
}

// Fetcher downloads and transcodes a remote source into dir/<name>.<codec>
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, dir, name string) error
}

// Tagger embeds metadata into a local audio file
type Tagger interface {
	Tag(ctx context.Context, path string, meta types.TrackMetadata) error
}

// ProgressFunc is called after each collection member finishes
type ProgressFunc func(done, total int, outcome types.TrackOutcome)
