package api

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"spotigrab/types"
)

// musicCategoryID is the YouTube video category for music
const musicCategoryID = "10"

// YouTubeSearcher searches music videos through the YouTube Data API
type YouTubeSearcher struct {
	service *youtube.Service
}

// NewYouTubeSearcher creates a searcher authenticated with an API key. Extra options are
// appended after the key.
func NewYouTubeSearcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &YouTubeSearcher{service: service}, nil
}

// Search returns at most one music video for phrase
func (s *YouTubeSearcher) Search(ctx context.Context, phrase string) ([]types.SourceLocator, error) {
	resp, err := s.service.Search.List([]string{"id"}).
		Q(phrase).
		Type("video").
		VideoCategoryId(musicCategoryID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	var results []types.SourceLocator
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		results = append(results, types.SourceLocator{
			VideoID: item.Id.VideoId,
			URL:     WatchURL(item.Id.VideoId),
		})
	}
	return results, nil
}
