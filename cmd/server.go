package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"spotigrab/config"
	"spotigrab/handlers"
	"spotigrab/middleware"
	"spotigrab/services"
	"spotigrab/websocket"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		defer logger.Sync() //nolint:errcheck

		return StartWebServer(ctx, cfg, logger)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("server-host", config.DefaultHost, "HTTP server host")
	flags.Int("server-port", config.DefaultPort, "HTTP server port")
	flags.String("cors-origins", config.DefaultCORSOrigins, "comma separated allowed origins")
	flags.Int("job-workers", config.DefaultJobWorkers, "queued jobs processed concurrently")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

// StartWebServer serves the API until ctx is cancelled, then shuts down gracefully
func StartWebServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	hub := websocket.NewHub(logger.Named("websocket"))
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	jobQueue := services.NewJobQueue(cfg.Download.JobWorkers, a.dispatcher, hub, a.metrics, logger.Named("jobs"))
	jobQueue.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging(logger.Named("http")))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	handlers.SetupRoutes(r, handlers.Handlers{
		Health:    handlers.NewHealthHandler(a.root),
		Downloads: handlers.NewDownloadHandler(a.dispatcher, jobQueue, hub, a.files, a.root, logger.Named("downloads")),
		Files:     handlers.NewFileHandler(a.files, a.root, logger.Named("files")),
		Gatherer:  a.registry,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g.Go(func() error {
		logger.Info("spotigrab web server starting",
			zap.String("addr", srv.Addr),
			zap.String("download_location", a.root))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
