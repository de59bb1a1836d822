// Package cmd implements the spotigrab command line.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"spotigrab/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spotigrab",
	Short: "spotigrab - Spotify links to tagged MP3 files",
	Long: `spotigrab resolves Spotify track and playlist links (or free-text queries) to audio on
YouTube, downloads it as tagged MP3 files and packages playlists as zip archives.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "env file to load (default is .env)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("youtube-api-key", "", "YouTube Data API key (yt-dlp search is used when empty)")
	flags.String("download-location", config.DefaultDownloadDir, "directory receiving tracks and archives")
	flags.String("ffmpeg-location", "", "ffmpeg binary or directory containing it (default: PATH)")
	flags.String("codec", config.DefaultCodec, "output audio codec (mp3 or flac)")
	flags.String("quality", config.DefaultQuality, "output bitrate in kbps")
	flags.Int("batch-workers", config.DefaultBatchWorkers, "tracks of one playlist processed concurrently")
	flags.Bool("install-ytdlp", true, "download yt-dlp when it is not installed")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(serveCmd, fetchCmd)
}

func initConfig() {
	if err := config.LoadEnvFile(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
	}

	config.SetupViper(viper.GetViper())
	cfg = config.FromViper(viper.GetViper())
	logger = buildLogger(cfg.Log.Level)
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := zcfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}
	return builtLogger
}
