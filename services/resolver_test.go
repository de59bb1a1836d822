package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotigrab/types"
)

func TestMetadataResolver(t *testing.T) {
	catalog := &fakeCatalog{tracks: map[string]*types.CatalogTrack{
		"abc":      {ID: "abc", Name: "Song", Artists: []string{"Band", "Guest"}, Album: "Album", Images: []string{"https://img/1.jpg", "https://img/2.jpg"}},
		"nameless": {ID: "nameless", Artists: []string{"Band"}},
	}}
	resolver := NewMetadataResolver(catalog)
	ctx := context.Background()

	t.Run("first artist and image", func(t *testing.T) {
		meta, err := resolver.Resolve(ctx, types.TrackRef("abc"))
		require.NoError(t, err)
		assert.Equal(t, types.TrackMetadata{Title: "Song", Artist: "Band", Album: "Album", CoverURL: "https://img/1.jpg"}, meta)
	})

	t.Run("missing identifier makes no call", func(t *testing.T) {
		before := catalog.trackCalls
		_, err := resolver.Resolve(ctx, types.Reference{Kind: types.KindTrack, Raw: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, before, catalog.trackCalls)
	})

	t.Run("catalog failure", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, types.TrackRef("unknown"))
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("incomplete entry", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, types.TrackRef("nameless"))
		assert.ErrorIs(t, err, ErrProvider)
	})
}
