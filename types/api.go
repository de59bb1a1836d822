package types

// AudioFile represents a downloaded audio file found in the download root
type AudioFile struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Format   string         `json:"format"`
	Metadata *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata represents the tags read back from an audio file
type AudioMetadata struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Cover  bool   `json:"cover"`
}

// Archive is a packaged playlist available for download
type Archive struct {
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	DownloadLink string `json:"download_link"`
}
