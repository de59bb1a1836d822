package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"spotigrab/api"
	"spotigrab/config"
	"spotigrab/metrics"
	"spotigrab/services"
)

// app holds the wired download stack shared by serve and fetch
type app struct {
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	dispatcher *services.Dispatcher
	files      services.FileService
	root       string
}

// buildApp validates the configuration and connects to every external dependency.
// Missing credentials, ffmpeg or yt-dlp are fatal.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	root := cfg.Download.Location
	if err := config.EnsureDownloadLocation(root); err != nil {
		return nil, err
	}

	ffmpeg, err := config.ResolveFFmpeg(cfg.Download.FFmpegLocation)
	if err != nil {
		return nil, err
	}
	if cfg.Download.InstallYtDlp {
		if err := api.InstallYtDlp(ctx, logger.Named("ytdlp")); err != nil {
			return nil, err
		}
	}

	catalog, err := api.NewSpotifyCatalog(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, logger.Named("spotify"))
	if err != nil {
		return nil, err
	}

	ytdlp := api.NewYtDlp(ffmpeg, cfg.Download.Codec, cfg.Download.Quality, logger.Named("ytdlp"))
	var searcher services.Searcher = ytdlp
	if cfg.YouTube.APIKey != "" {
		yt, err := api.NewYouTubeSearcher(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return nil, err
		}
		searcher = yt
		logger.Info("using YouTube Data API for search")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	tagger, err := services.NewTagger(cfg.Download.Codec, nil, logger.Named("tagger"))
	if err != nil {
		return nil, err
	}

	pipeline := services.NewTrackPipeline(
		services.NewMetadataResolver(catalog),
		services.NewMatchFinder(searcher),
		services.NewAcquisitionEngine(ytdlp, cfg.Download.Codec),
		tagger,
		m,
		logger.Named("pipeline"),
	)
	batches := services.NewBatchOrchestrator(catalog, pipeline, root, cfg.Download.BatchWorkers, m, logger.Named("playlist"))

	return &app{
		registry:   registry,
		metrics:    m,
		dispatcher: services.NewDispatcher(pipeline, batches, root, m, logger.Named("dispatcher")),
		files:      services.NewFileService(logger.Named("files")),
		root:       root,
	}, nil
}
