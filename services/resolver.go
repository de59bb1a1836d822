package services

import (
	"context"
	"fmt"

	"spotigrab/types"
)

// MetadataResolver turns a catalog track reference into canonical metadata
type MetadataResolver struct {
	catalog Catalog
}

// NewMetadataResolver creates a resolver backed by catalog
func NewMetadataResolver(catalog Catalog) *MetadataResolver {
	return &MetadataResolver{catalog: catalog}
}

// Resolve fetches the track once from the catalog. References without an identifier fail
// with ErrNotFound before any network call.
func (r *MetadataResolver) Resolve(ctx context.Context, ref types.Reference) (types.TrackMetadata, error) {
	if ref.ID == "" {
		return types.TrackMetadata{}, fmt.Errorf("%w: no track identifier in %q", ErrNotFound, ref.Raw)
	}

	track, err := r.catalog.Track(ctx, ref.ID)
	if err != nil {
		return types.TrackMetadata{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if track == nil || track.Name == "" || len(track.Artists) == 0 || track.Artists[0] == "" {
		return types.TrackMetadata{}, fmt.Errorf("%w: incomplete catalog entry for track %s", ErrProvider, ref.ID)
	}

	meta := types.TrackMetadata{
		Title:  track.Name,
		Artist: track.Artists[0],
		Album:  track.Album,
	}
	if len(track.Images) > 0 {
		meta.CoverURL = track.Images[0]
	}
	return meta, nil
}
