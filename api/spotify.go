// Package api holds the clients of the external services: the Spotify catalog, the
// YouTube search backends and yt-dlp.
package api

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"spotigrab/types"
)

const playlistPageSize = 100

// SpotifyCatalog reads tracks and playlists from the Spotify Web API
type SpotifyCatalog struct {
	client *spotify.Client
	logger *zap.Logger
}

// NewSpotifyCatalog authenticates with the client credentials flow. The token is fetched
// once up front so bad credentials fail at startup; the returned client refreshes it.
func NewSpotifyCatalog(ctx context.Context, clientID, clientSecret string, logger *zap.Logger) (*SpotifyCatalog, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := cfg.Token(ctx); err != nil {
		return nil, fmt.Errorf("spotify authentication failed: %w", err)
	}

	logger.Info("authenticated with spotify")
	return NewSpotifyCatalogWithClient(spotify.New(cfg.Client(ctx)), logger), nil
}

// NewSpotifyCatalogWithClient wraps an existing client
func NewSpotifyCatalogWithClient(client *spotify.Client, logger *zap.Logger) *SpotifyCatalog {
	return &SpotifyCatalog{client: client, logger: logger}
}

// Track fetches a single track
func (c *SpotifyCatalog) Track(ctx context.Context, id string) (*types.CatalogTrack, error) {
	track, err := c.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	return convertTrack(track), nil
}

// Playlist fetches a playlist's name and all of its items in playlist order
func (c *SpotifyCatalog) Playlist(ctx context.Context, id string) (*types.Collection, error) {
	playlistID := spotify.ID(id)

	playlist, err := c.client.GetPlaylist(ctx, playlistID, spotify.Fields("name"))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}

	collection := &types.Collection{ID: id, Name: playlist.Name}
	offset := 0
	for {
		page, err := c.client.GetPlaylistItems(ctx, playlistID,
			spotify.Limit(playlistPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", err)
		}

		for i := range page.Items {
			collection.Members = append(collection.Members, convertMember(&page.Items[i]))
		}

		if len(page.Items) < playlistPageSize {
			break
		}
		offset += playlistPageSize
	}

	c.logger.Debug("retrieved playlist",
		zap.String("id", id),
		zap.String("name", collection.Name),
		zap.Int("count", len(collection.Members)))
	return collection, nil
}

func convertTrack(track *spotify.FullTrack) *types.CatalogTrack {
	ct := &types.CatalogTrack{
		ID:    string(track.ID),
		Name:  track.Name,
		Album: track.Album.Name,
	}
	for _, artist := range track.Artists {
		ct.Artists = append(ct.Artists, artist.Name)
	}
	for _, image := range track.Album.Images {
		ct.Images = append(ct.Images, image.URL)
	}
	return ct
}

// convertMember leaves ID empty for episodes, local files and unavailable tracks
func convertMember(item *spotify.PlaylistItem) types.CollectionMember {
	track := item.Track.Track
	if track == nil {
		return types.CollectionMember{}
	}
	if item.IsLocal {
		return types.CollectionMember{Name: track.Name}
	}
	return types.CollectionMember{ID: string(track.ID), Name: track.Name}
}
