package services

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"spotigrab/metrics"
	"spotigrab/types"
)

var playlistIDRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// TrackRunner runs a single track into a destination directory
type TrackRunner interface {
	Run(ctx context.Context, ref types.Reference, destDir string) types.TrackOutcome
}

// BatchOrchestrator downloads every member of a playlist and packages the result
type BatchOrchestrator struct {
	catalog Catalog
	tracks  TrackRunner
	root    string
	workers int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewBatchOrchestrator creates an orchestrator writing archives into root. workers <= 1
// processes members strictly one after another.
func NewBatchOrchestrator(catalog Catalog, tracks TrackRunner, root string, workers int, m *metrics.Metrics, logger *zap.Logger) *BatchOrchestrator {
	if workers < 1 {
		workers = 1
	}
	return &BatchOrchestrator{
		catalog: catalog,
		tracks:  tracks,
		root:    root,
		workers: workers,
		metrics: m,
		logger:  logger,
	}
}

// Run downloads the collection. Only a missing identifier (ErrNotFound), a catalog failure
// (ErrProvider) or a filesystem failure around the shared directory is returned as an
// error; per-track failures are recorded in the outcome and never stop the loop.
func (b *BatchOrchestrator) Run(ctx context.Context, ref types.Reference, progress ProgressFunc) (*types.BatchOutcome, error) {
	if ref.ID == "" || !playlistIDRegex.MatchString(ref.ID) {
		return nil, fmt.Errorf("%w: no playlist identifier in %q", ErrNotFound, ref.Raw)
	}

	collection, err := b.catalog.Playlist(ctx, ref.ID)
	if err != nil {
		b.metrics.ObserveBatch(string(types.StatusError))
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	name := SanitizeFilename(collection.Name)
	if name == "" {
		name = "playlist-" + ref.ID
	}
	dir, err := ReserveCollectionDir(b.root, name)
	if err != nil {
		return nil, err
	}

	b.logger.Info("downloading playlist",
		zap.String("id", ref.ID),
		zap.String("name", collection.Name),
		zap.Int("tracks", len(collection.Members)),
		zap.String("dir", dir))

	outcomes := b.runMembers(ctx, collection.Members, dir, progress)

	archivePath := dir + archiveExtension
	if err := ZipDirectory(dir, archivePath); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			b.logger.Warn("failed to remove collection directory", zap.String("dir", dir), zap.Error(rmErr))
		}
		b.metrics.ObserveBatch(string(types.StatusError))
		return nil, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("remove %s after archiving: %w", dir, err)
	}

	outcome := &types.BatchOutcome{
		Status:         types.StatusSuccess,
		CollectionName: collection.Name,
		ArchivePath:    archivePath,
		TotalTracks:    len(collection.Members),
		Tracks:         outcomes,
		DownloadLink:   "/downloads/" + url.PathEscape(filepath.Base(archivePath)),
	}
	b.metrics.ObserveBatch(string(outcome.Status))
	b.logger.Info("playlist archived",
		zap.String("archive", archivePath),
		zap.Int("succeeded", outcome.Succeeded()),
		zap.Int("total", outcome.TotalTracks))
	return outcome, nil
}

// runMembers keeps the outcome slice in catalog order regardless of worker count
func (b *BatchOrchestrator) runMembers(ctx context.Context, members []types.CollectionMember, dir string, progress ProgressFunc) []types.TrackOutcome {
	outcomes := make([]types.TrackOutcome, len(members))
	done := make(chan types.TrackOutcome)

	g := new(errgroup.Group)
	g.SetLimit(b.workers)

	go func() {
		for i, member := range members {
			i, member := i, member
			g.Go(func() error {
				if member.ID == "" {
					outcomes[i] = types.TrackError(MsgInvalidData)
				} else {
					outcomes[i] = b.tracks.Run(ctx, types.TrackRef(member.ID), dir)
				}
				done <- outcomes[i]
				return nil
			})
		}
		g.Wait()
		close(done)
	}()

	finished := 0
	for outcome := range done {
		finished++
		if progress != nil {
			progress(finished, len(members), outcome)
		}
	}
	return outcomes
}
