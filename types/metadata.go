package types

// TrackMetadata is the canonical description of a catalog track
type TrackMetadata struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	CoverURL string `json:"coverUrl,omitempty"`
}

// CatalogTrack is a track as returned by the catalog provider, before selection
type CatalogTrack struct {
	ID      string
	Name    string
	Artists []string
	Album   string
	Images  []string // largest first, as listed by the provider
}

// Collection is a playlist with its members in catalog order
type Collection struct {
	ID      string
	Name    string
	Members []CollectionMember
}

// CollectionMember is one playlist entry. ID is empty for entries without a usable track
// (local files, episodes, removed tracks).
type CollectionMember struct {
	ID   string
	Name string
}

// SourceLocator points at a playable remote resource
type SourceLocator struct {
	VideoID string `json:"videoId"`
	URL     string `json:"url"`
}

// LocalAudioFile is an audio file produced by the acquisition engine
type LocalAudioFile struct {
	Path  string `json:"path"`
	Codec string `json:"codec"`
}
