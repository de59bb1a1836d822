package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"go.uber.org/zap"

	"spotigrab/types"
)

const flacVendor = "spotigrab"

// FLACTagger writes Vorbis comments and a front cover picture block into FLAC files
type FLACTagger struct {
	coverFetcher
}

// NewFLACTagger creates a tagger. A nil client gets a default one with a timeout.
func NewFLACTagger(client *http.Client, logger *zap.Logger) *FLACTagger {
	return &FLACTagger{coverFetcher: newCoverFetcher(client, logger)}
}

// Tag replaces the Vorbis comment block and, when a cover can be fetched, any
// existing picture blocks. Audio frames are written back untouched.
func (t *FLACTagger) Tag(ctx context.Context, path string, meta types.TrackMetadata) error {
	file, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrTag, path, err)
	}

	comments := flacvorbis.New()
	comments.Vendor = flacVendor
	for _, field := range [][2]string{
		{flacvorbis.FIELD_TITLE, meta.Title},
		{flacvorbis.FIELD_ARTIST, meta.Artist},
		{flacvorbis.FIELD_ALBUM, meta.Album},
	} {
		if field[1] == "" {
			continue
		}
		if err := comments.Add(field[0], field[1]); err != nil {
			return fmt.Errorf("%w: comment %s: %v", ErrTag, field[0], err)
		}
	}

	var cover []byte
	if meta.CoverURL != "" {
		cover = t.fetchCover(ctx, meta.CoverURL)
	}

	kept := file.Meta[:0]
	for _, block := range file.Meta {
		if block.Type == flac.VorbisComment || (cover != nil && block.Type == flac.Picture) {
			continue
		}
		kept = append(kept, block)
	}
	file.Meta = kept

	commentBlock := comments.Marshal()
	file.Meta = append(file.Meta, &commentBlock)

	if cover != nil {
		picture := &flacpicture.MetadataBlockPicture{
			PictureType: flacpicture.PictureTypeFrontCover,
			MIME:        coverMimeType,
			Description: coverDescription,
			ImageData:   cover,
		}
		pictureBlock := picture.Marshal()
		file.Meta = append(file.Meta, &pictureBlock)
	}

	if err := file.Save(path); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrTag, path, err)
	}
	return nil
}
