package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"spotigrab/metrics"
	"spotigrab/types"
)

// Outcome messages reported to clients
const (
	MsgMetadataFailed   = "failed to get metadata"
	MsgNotFound         = "not found"
	MsgConversionFailed = "file conversion failed"
	MsgInvalidData      = "invalid data"
)

// Pipeline stages, used as metric labels
const (
	stageMetadata = "metadata"
	stageSearch   = "search"
	stageAcquire  = "acquire"
	stageRename   = "rename"
	stageTag      = "tag"
)

const reservedNamePrefix = "spotigrab-"

// TrackPipeline runs one track through resolve, search, acquire, rename and tag
type TrackPipeline struct {
	resolver *MetadataResolver
	finder   *MatchFinder
	acquirer *AcquisitionEngine
	tagger   Tagger
	metrics  *metrics.Metrics
	logger   *zap.Logger

	reserveName func() string
}

// NewTrackPipeline wires the pipeline stages together
func NewTrackPipeline(resolver *MetadataResolver, finder *MatchFinder, acquirer *AcquisitionEngine, tagger Tagger, m *metrics.Metrics, logger *zap.Logger) *TrackPipeline {
	return &TrackPipeline{
		resolver: resolver,
		finder:   finder,
		acquirer: acquirer,
		tagger:   tagger,
		metrics:  m,
		logger:   logger,
		reserveName: func() string {
			return reservedNamePrefix + uuid.New().String()
		},
	}
}

// Run processes ref into destDir. It never returns an error: every failure is reported
// in the outcome. A tagging failure leaves the renamed file on disk.
func (p *TrackPipeline) Run(ctx context.Context, ref types.Reference, destDir string) types.TrackOutcome {
	start := time.Now()
	outcome, stage := p.run(ctx, ref, destDir)

	p.metrics.ObserveTrack(string(outcome.Status), stage, time.Since(start))
	if outcome.Status == types.StatusSuccess {
		p.logger.Info("track downloaded",
			zap.String("reference", ref.Raw),
			zap.String("file", outcome.FilePath))
	} else {
		p.logger.Warn("track failed",
			zap.String("reference", ref.Raw),
			zap.String("stage", stage),
			zap.String("message", outcome.Message))
	}
	return outcome
}

func (p *TrackPipeline) run(ctx context.Context, ref types.Reference, destDir string) (types.TrackOutcome, string) {
	var meta types.TrackMetadata
	if ref.IsCatalog() {
		resolved, err := p.resolver.Resolve(ctx, ref)
		if err != nil {
			p.logger.Debug("metadata resolution failed", zap.String("id", ref.ID), zap.Error(err))
			return types.TrackError(MsgMetadataFailed), stageMetadata
		}
		meta = resolved
	} else {
		meta = types.TrackMetadata{Title: ref.Query}
	}

	loc, err := p.finder.Find(ctx, SearchPhrase(&meta, ref))
	if err != nil {
		p.logger.Debug("no playable source", zap.String("reference", ref.Raw), zap.Error(err))
		return types.TrackError(MsgNotFound), stageSearch
	}

	reserved := p.reserveName()
	file, err := p.acquirer.Acquire(ctx, loc, destDir, reserved)
	if err != nil {
		if errors.Is(err, ErrConversion) {
			return types.TrackError(MsgConversionFailed), stageAcquire
		}
		return types.TrackError(err.Error()), stageAcquire
	}

	finalPath := filepath.Join(destDir, TrackFilename(meta.Artist, meta.Title, file.Codec))
	if _, err := os.Stat(file.Path); err != nil {
		return types.TrackError(MsgConversionFailed), stageRename
	}
	if err := os.Rename(file.Path, finalPath); err != nil {
		os.Remove(file.Path)
		return types.TrackError(fmt.Sprintf("failed to move file: %v", err)), stageRename
	}

	if err := p.tagger.Tag(ctx, finalPath, meta); err != nil {
		return types.TrackError(fmt.Sprintf("tagging error: %v", err)), stageTag
	}

	return types.TrackOutcome{
		Status:    types.StatusSuccess,
		Title:     meta.Title,
		Artist:    meta.Artist,
		Album:     meta.Album,
		SourceURL: loc.URL,
		FilePath:  finalPath,
	}, ""
}
