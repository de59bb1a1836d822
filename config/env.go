package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// SupportedCodecs lists the output codecs a tagger exists for
var SupportedCodecs = []string{"mp3", "flac"}

// EnvPrefix is prepended to every configuration key read from the environment
const EnvPrefix = "SPOTIGRAB"

const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8000
	DefaultDownloadDir   = "downloads"
	DefaultCodec         = "mp3"
	DefaultQuality       = "320"
	DefaultLogLevel      = "info"
	DefaultCORSOrigins   = "http://localhost:3000,http://localhost:5173"
	DefaultReadTimeout   = 15 * time.Second
	DefaultWriteTimeout  = 0 // playlist requests run for minutes
	DefaultBatchWorkers  = 1
	DefaultJobWorkers    = 1
	ffmpegExecutableName = "ffmpeg"
)

// Config is the complete process configuration
type Config struct {
	Server   ServerConfig
	Spotify  SpotifyConfig
	YouTube  YouTubeConfig
	Download DownloadConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

type YouTubeConfig struct {
	APIKey string
}

type DownloadConfig struct {
	Location       string
	FFmpegLocation string
	Codec          string
	Quality        string
	BatchWorkers   int
	JobWorkers     int
	InstallYtDlp   bool
}

type LogConfig struct {
	Level string
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns a configuration populated with defaults only
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			CORSOrigins:  strings.Split(DefaultCORSOrigins, ","),
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		Download: DownloadConfig{
			Location:     DefaultDownloadDir,
			Codec:        DefaultCodec,
			Quality:      DefaultQuality,
			BatchWorkers: DefaultBatchWorkers,
			JobWorkers:   DefaultJobWorkers,
			InstallYtDlp: true,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// LoadEnvFile loads a dotenv file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := gotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SetupViper configures environment lookups for v
func SetupViper(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server-host", DefaultHost)
	v.SetDefault("server-port", DefaultPort)
	v.SetDefault("cors-origins", DefaultCORSOrigins)
	v.SetDefault("download-location", DefaultDownloadDir)
	v.SetDefault("codec", DefaultCodec)
	v.SetDefault("quality", DefaultQuality)
	v.SetDefault("batch-workers", DefaultBatchWorkers)
	v.SetDefault("job-workers", DefaultJobWorkers)
	v.SetDefault("install-ytdlp", true)
	v.SetDefault("log-level", DefaultLogLevel)
}

// FromViper builds the configuration from v
func FromViper(v *viper.Viper) *Config {
	cfg := Default()

	cfg.Server.Host = v.GetString("server-host")
	cfg.Server.Port = v.GetInt("server-port")
	cfg.Server.Mode = v.GetString("gin-mode")
	if origins := v.GetString("cors-origins"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}

	cfg.Spotify.ClientID = firstNonEmpty(v.GetString("spotify-client-id"), os.Getenv("SPOTIPY_CLIENT_ID"))
	cfg.Spotify.ClientSecret = firstNonEmpty(v.GetString("spotify-client-secret"), os.Getenv("SPOTIPY_CLIENT_SECRET"))

	cfg.YouTube.APIKey = firstNonEmpty(v.GetString("youtube-api-key"), os.Getenv("YOUTUBE_API_KEY"))

	cfg.Download.Location = GetDownloadLocation(v.GetString("download-location"))
	cfg.Download.FFmpegLocation = v.GetString("ffmpeg-location")
	cfg.Download.Codec = v.GetString("codec")
	cfg.Download.Quality = v.GetString("quality")
	cfg.Download.BatchWorkers = v.GetInt("batch-workers")
	if cfg.Download.BatchWorkers < 1 {
		cfg.Download.BatchWorkers = DefaultBatchWorkers
	}
	cfg.Download.JobWorkers = v.GetInt("job-workers")
	if cfg.Download.JobWorkers < 1 {
		cfg.Download.JobWorkers = DefaultJobWorkers
	}
	cfg.Download.InstallYtDlp = v.GetBool("install-ytdlp")

	cfg.Log.Level = v.GetString("log-level")

	return cfg
}

// Validate checks the settings without which no request can succeed
func (c *Config) Validate() error {
	var errs []error
	if c.Spotify.ClientID == "" {
		errs = append(errs, errors.New("spotify client id is required (SPOTIGRAB_SPOTIFY_CLIENT_ID)"))
	}
	if c.Spotify.ClientSecret == "" {
		errs = append(errs, errors.New("spotify client secret is required (SPOTIGRAB_SPOTIFY_CLIENT_SECRET)"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}
	if !slices.Contains(SupportedCodecs, c.Download.Codec) {
		errs = append(errs, fmt.Errorf("unsupported codec %q (want one of %v)", c.Download.Codec, SupportedCodecs))
	}
	return errors.Join(errs...)
}

// GetDownloadLocation returns the download root, falling back to ./downloads
func GetDownloadLocation(configured string) string {
	if configured != "" {
		return configured
	}
	if customPath := os.Getenv("SPOTIGRAB_DOWNLOADS"); customPath != "" {
		return customPath
	}
	return filepath.Join(".", DefaultDownloadDir)
}

// EnsureDownloadLocation creates the download root if needed
func EnsureDownloadLocation(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cannot create download location %s: %w", path, err)
	}
	return nil
}

// ResolveFFmpeg locates the ffmpeg executable. location may be the binary itself or the
// directory containing it; when empty, PATH is searched.
func ResolveFFmpeg(location string) (string, error) {
	if location == "" {
		path, err := exec.LookPath(ffmpegExecutableName)
		if err != nil {
			return "", fmt.Errorf("ffmpeg not found on PATH, set SPOTIGRAB_FFMPEG_LOCATION: %w", err)
		}
		return path, nil
	}

	info, err := os.Stat(location)
	if err != nil {
		return "", fmt.Errorf("ffmpeg location %s: %w", location, err)
	}
	if !info.IsDir() {
		return location, nil
	}

	name := ffmpegExecutableName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(location, name)
	if _, err := os.Stat(candidate); err != nil {
		return "", fmt.Errorf("no %s in %s: %w", name, location, err)
	}
	return candidate, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
