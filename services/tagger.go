package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bogem/id3v2/v2"
	"go.uber.org/zap"

	"spotigrab/types"
)

const (
	coverMimeType    = "image/jpeg"
	coverDescription = "Cover"
	maxCoverBytes    = 10 << 20
)

// NewTagger picks the tag format written into files of the given codec
func NewTagger(codec string, client *http.Client, logger *zap.Logger) (Tagger, error) {
	switch codec {
	case "mp3":
		return NewID3Tagger(client, logger), nil
	case "flac":
		return NewFLACTagger(client, logger), nil
	default:
		return nil, fmt.Errorf("no tagger for codec %q", codec)
	}
}

type coverFetcher struct {
	client *http.Client
	logger *zap.Logger
}

func newCoverFetcher(client *http.Client, logger *zap.Logger) coverFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return coverFetcher{client: client, logger: logger}
}

// ID3Tagger writes ID3v2 title, artist, album and front cover frames
type ID3Tagger struct {
	coverFetcher
}

// NewID3Tagger creates a tagger. A nil client gets a default one with a timeout.
func NewID3Tagger(client *http.Client, logger *zap.Logger) *ID3Tagger {
	return &ID3Tagger{coverFetcher: newCoverFetcher(client, logger)}
}

// Tag overwrites the text frames and embeds the cover when one can be fetched.
// The cover is always declared as JPEG regardless of the bytes served.
func (t *ID3Tagger) Tag(ctx context.Context, path string, meta types.TrackMetadata) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrTag, path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(meta.Title)
	tag.SetArtist(meta.Artist)
	tag.SetAlbum(meta.Album)

	if meta.CoverURL != "" {
		if cover := t.fetchCover(ctx, meta.CoverURL); cover != nil {
			tag.DeleteFrames(tag.CommonID("Attached picture"))
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    coverMimeType,
				PictureType: id3v2.PTFrontCover,
				Description: coverDescription,
				Picture:     cover,
			})
		}
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrTag, path, err)
	}
	return nil
}

// fetchCover returns nil on any failure; a missing cover never fails tagging
func (t coverFetcher) fetchCover(ctx context.Context, url string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil
	}
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("cover fetch failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.logger.Debug("cover fetch returned non-200", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}
