package api

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"spotigrab/types"
)

// YouTubeVideoURLTemplate builds the canonical watch URL of a video
const YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"

const (
	bestAudioFormat = "bestaudio/best"
	searchPrefix    = "ytsearch1:"
)

var videoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// WatchURL returns the watch URL for a video ID
func WatchURL(videoID string) string {
	return fmt.Sprintf(YouTubeVideoURLTemplate, videoID)
}

// InstallYtDlp makes sure a yt-dlp executable is available, downloading it if needed
func InstallYtDlp(ctx context.Context, logger *zap.Logger) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("yt-dlp is not available: %w", err)
	}
	logger.Info("yt-dlp ready",
		zap.String("executable", resolved.Executable),
		zap.String("version", resolved.Version))
	return nil
}

// YtDlp downloads and transcodes audio with yt-dlp and ffmpeg. It also serves as the
// keyless search backend.
type YtDlp struct {
	ffmpeg  string
	codec   string
	quality string
	logger  *zap.Logger
}

// NewYtDlp creates a yt-dlp client. quality is a bitrate in kbps ("320").
func NewYtDlp(ffmpegPath, codec, quality string, logger *zap.Logger) *YtDlp {
	return &YtDlp{
		ffmpeg:  ffmpegPath,
		codec:   codec,
		quality: quality,
		logger:  logger,
	}
}

// Fetch downloads the best audio stream of sourceURL and converts it to dir/<name>.<codec>
func (y *YtDlp) Fetch(ctx context.Context, sourceURL, dir, name string) error {
	dl := ytdlp.New().
		NoPlaylist().
		Format(bestAudioFormat).
		ExtractAudio().
		AudioFormat(y.codec).
		AudioQuality(y.quality + "K").
		NoProgress().
		Output(filepath.Join(dir, name+".%(ext)s"))
	if y.ffmpeg != "" {
		dl = dl.FFmpegLocation(y.ffmpeg)
	}

	if _, err := dl.Run(ctx, sourceURL); err != nil {
		return fmt.Errorf("yt-dlp download of %s failed: %w", sourceURL, err)
	}
	y.logger.Debug("yt-dlp finished", zap.String("url", sourceURL), zap.String("name", name))
	return nil
}

// Search asks yt-dlp's YouTube search extractor for the first match of phrase
func (y *YtDlp) Search(ctx context.Context, phrase string) ([]types.SourceLocator, error) {
	result, err := ytdlp.New().
		FlatPlaylist().
		SkipDownload().
		Print("id").
		Run(ctx, searchPrefix+phrase)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search failed: %w", err)
	}
	return parseSearchOutput(result.Stdout), nil
}

// parseSearchOutput turns one video ID per line into locators, ignoring noise
func parseSearchOutput(stdout string) []types.SourceLocator {
	var results []types.SourceLocator
	for _, line := range strings.Split(stdout, "\n") {
		id := strings.TrimSpace(line)
		if !videoIDRegex.MatchString(id) {
			continue
		}
		results = append(results, types.SourceLocator{VideoID: id, URL: WatchURL(id)})
	}
	return results
}
