package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spotigrab/types"
)

// AcquisitionEngine downloads a source and transcodes it under a reserved temporary name
type AcquisitionEngine struct {
	fetcher Fetcher
	codec   string
}

// NewAcquisitionEngine creates an engine producing files with the given codec extension
func NewAcquisitionEngine(fetcher Fetcher, codec string) *AcquisitionEngine {
	return &AcquisitionEngine{fetcher: fetcher, codec: codec}
}

// Codec returns the container extension produced by the engine
func (a *AcquisitionEngine) Codec() string {
	return a.codec
}

// Acquire writes the transcoded audio to dir/<reservedName>.<codec>.
// Callers must use a reserved name unique to the invocation. On failure every file
// starting with the reserved name (partial downloads, intermediate containers) is removed.
func (a *AcquisitionEngine) Acquire(ctx context.Context, loc types.SourceLocator, dir, reservedName string) (types.LocalAudioFile, error) {
	if err := a.fetcher.Fetch(ctx, loc.URL, dir, reservedName); err != nil {
		discardReserved(dir, reservedName)
		return types.LocalAudioFile{}, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	path := filepath.Join(dir, reservedName+"."+a.codec)
	if _, err := os.Stat(path); err != nil {
		discardReserved(dir, reservedName)
		return types.LocalAudioFile{}, fmt.Errorf("%w: expected %s after transcode", ErrConversion, filepath.Base(path))
	}
	return types.LocalAudioFile{Path: path, Codec: a.codec}, nil
}

// discardReserved removes every entry of dir whose name starts with reservedName
func discardReserved(dir, reservedName string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), reservedName) {
			os.RemoveAll(filepath.Join(dir, entry.Name()))
		}
	}
}
