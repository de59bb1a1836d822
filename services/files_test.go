package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spotigrab/types"
)

func TestScanDownloads(t *testing.T) {
	root := t.TempDir()
	tagged := filepath.Join(root, "Band - Song.mp3")
	require.NoError(t, os.WriteFile(tagged, []byte("not really audio, but enough for id3 tags"), 0o644))
	require.NoError(t, NewID3Tagger(nil, zap.NewNop()).Tag(context.Background(), tagged,
		types.TrackMetadata{Title: "Song", Artist: "Band", Album: "Album"}))

	require.NoError(t, os.WriteFile(filepath.Join(root, "Other - Tune.mp3"), []byte("untagged"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, reservedNamePrefix+"123.mp3"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Road Trip.zip"), []byte("zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "in progress"), 0o755))

	fs := NewFileService(zap.NewNop())
	audio, archives, err := fs.ScanDownloads(root)
	require.NoError(t, err)

	require.Len(t, audio, 2)
	assert.Equal(t, "Band - Song.mp3", audio[0].Filename)
	assert.Equal(t, "mp3", audio[0].Format)
	assert.Equal(t, "Album", audio[0].Metadata.Album)
	assert.Equal(t, "Other - Tune.mp3", audio[1].Filename)
	assert.Equal(t, "Other", audio[1].Metadata.Artist)
	assert.Equal(t, "Tune", audio[1].Metadata.Title)

	require.Len(t, archives, 1)
	assert.Equal(t, "/downloads/Road%20Trip.zip", archives[0].DownloadLink)
}

func TestValidateFilename(t *testing.T) {
	fs := NewFileService(zap.NewNop())

	for _, name := range []string{"Band - Song.mp3", "Road Trip (2).zip", "a..b.mp3"} {
		assert.NoError(t, fs.ValidateFilename(name), name)
	}
	for _, name := range []string{"", " ", ".", "..", "../etc/passwd", "sub/file.mp3", `..\win.ini`, "/abs.mp3"} {
		assert.Error(t, fs.ValidateFilename(name), name)
	}
}

func TestResolveDownload(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Song.mp3"), nil, 0o644))
	fs := NewFileService(zap.NewNop())

	path, err := fs.ResolveDownload(root, "Song.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Song.mp3", filepath.Base(path))

	_, err = fs.ResolveDownload(root, "../Song.mp3")
	assert.Error(t, err)
}

func TestGetContentType(t *testing.T) {
	fs := NewFileService(zap.NewNop())
	assert.Equal(t, "audio/mpeg", fs.GetContentType("a.MP3"))
	assert.Equal(t, "application/zip", fs.GetContentType("a.zip"))
	assert.Equal(t, "application/octet-stream", fs.GetContentType("a.bin"))
}
