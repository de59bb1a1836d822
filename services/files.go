package services

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"go.uber.org/zap"

	"spotigrab/types"
)

// FileService interface defines methods for inspecting the download root
type FileService interface {
	ScanDownloads(root string) ([]types.AudioFile, []types.Archive, error)
	ExtractAudioMetadata(filePath string) *types.AudioMetadata
	ValidateFilename(name string) error
	ResolveDownload(root, name string) (string, error)
	GetContentType(filePath string) string
}

// fileService implements the FileService interface
type fileService struct {
	logger *zap.Logger
}

// NewFileService creates a new file service
func NewFileService(logger *zap.Logger) FileService {
	return &fileService{logger: logger}
}

// ScanDownloads lists the tracks and playlist archives directly inside root
func (fs *fileService) ScanDownloads(root string) ([]types.AudioFile, []types.Archive, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, err
	}

	audioFiles := []types.AudioFile{}
	archives := []types.Archive{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			fs.logger.Debug("cannot stat download", zap.String("name", entry.Name()), zap.Error(err))
			continue
		}

		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".mp3", ".flac", ".m4a":
			if strings.HasPrefix(name, reservedNamePrefix) {
				continue // in-flight download
			}
			audioFiles = append(audioFiles, types.AudioFile{
				Filename: name,
				Path:     filepath.Join(root, name),
				Size:     info.Size(),
				Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
				Metadata: fs.ExtractAudioMetadata(filepath.Join(root, name)),
			})
		case archiveExtension:
			archives = append(archives, types.Archive{
				Filename:     name,
				Size:         info.Size(),
				DownloadLink: "/downloads/" + url.PathEscape(name),
			})
		}
	}

	sort.Slice(audioFiles, func(i, j int) bool { return audioFiles[i].Filename < audioFiles[j].Filename })
	sort.Slice(archives, func(i, j int) bool { return archives[i].Filename < archives[j].Filename })
	return audioFiles, archives, nil
}

// GetContentType returns the MIME type served for a download
func (fs *fileService) GetContentType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".m4a":
		return "audio/mp4"
	case archiveExtension:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// ExtractAudioMetadata reads tags back from a file, falling back to the
// "<artist> - <title>" file name convention
func (fs *fileService) ExtractAudioMetadata(filePath string) *types.AudioMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		fs.logger.Debug("could not open audio file", zap.String("path", filePath), zap.Error(err))
		return metadataFromFilename(filePath)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		fs.logger.Debug("could not parse audio metadata", zap.String("path", filePath), zap.Error(err))
		return metadataFromFilename(filePath)
	}

	metadata := &types.AudioMetadata{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Cover:  meta.Picture() != nil,
	}

	if metadata.Title == "" || metadata.Artist == "" {
		fallback := metadataFromFilename(filePath)
		if metadata.Title == "" {
			metadata.Title = fallback.Title
		}
		if metadata.Artist == "" {
			metadata.Artist = fallback.Artist
		}
	}
	return metadata
}

func metadataFromFilename(filePath string) *types.AudioMetadata {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	if artist, title, ok := strings.Cut(base, " - "); ok {
		return &types.AudioMetadata{Title: title, Artist: artist}
	}
	return &types.AudioMetadata{Title: base}
}

// ValidateFilename only accepts plain file names inside the download root
func (fs *fileService) ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty file name not allowed")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("path traversal not allowed")
	}
	if strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return fmt.Errorf("nested paths not allowed")
	}
	return nil
}

// ResolveDownload maps a validated file name to a path inside root
func (fs *fileService) ResolveDownload(root, name string) (string, error) {
	if err := fs.ValidateFilename(name); err != nil {
		return "", err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(filepath.Join(root, name))
	if err != nil {
		return "", err
	}
	if filepath.Dir(absPath) != absRoot {
		return "", fmt.Errorf("path traversal not allowed")
	}
	return absPath, nil
}
