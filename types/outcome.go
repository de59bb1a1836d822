package types

import "encoding/json"

// OutcomeStatus is the terminal status of a track or collection request
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusError   OutcomeStatus = "error"
)

// TrackOutcome is the result of running one track through the pipeline
type TrackOutcome struct {
	Status    OutcomeStatus `json:"status"`
	Title     string        `json:"title"`
	Artist    string        `json:"artist"`
	Album     string        `json:"album"`
	SourceURL string        `json:"youtube_url,omitempty"`
	FilePath  string        `json:"file_path,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// MarshalJSON always emits title, artist and album for successes; errors carry only
// status and message.
func (o TrackOutcome) MarshalJSON() ([]byte, error) {
	if o.Status == StatusError {
		return json.Marshal(struct {
			Status  OutcomeStatus `json:"status"`
			Message string        `json:"message"`
		}{o.Status, o.Message})
	}
	type outcome TrackOutcome
	return json.Marshal(outcome(o))
}

// TrackError builds an error outcome
func TrackError(message string) TrackOutcome {
	return TrackOutcome{Status: StatusError, Message: message}
}

// BatchOutcome is the result of downloading a whole collection
type BatchOutcome struct {
	Status         OutcomeStatus  `json:"status"`
	CollectionName string         `json:"playlist_name,omitempty"`
	ArchivePath    string         `json:"zip_path,omitempty"`
	TotalTracks    int            `json:"total_tracks"`
	Tracks         []TrackOutcome `json:"tracks"`
	DownloadLink   string         `json:"download_link,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// Succeeded counts the successful track outcomes
func (b *BatchOutcome) Succeeded() int {
	n := 0
	for _, t := range b.Tracks {
		if t.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// Result holds whichever outcome a dispatched request produced
type Result struct {
	Kind  ReferenceKind `json:"kind"`
	Track *TrackOutcome `json:"track,omitempty"`
	Batch *BatchOutcome `json:"batch,omitempty"`
}

// Body returns the outcome that is serialized to clients
func (r Result) Body() interface{} {
	if r.Batch != nil {
		return r.Batch
	}
	return r.Track
}
