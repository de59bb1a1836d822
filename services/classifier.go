package services

import (
	"net/url"
	"regexp"
	"strings"

	"spotigrab/types"
)

var (
	trackURLRegex    = regexp.MustCompile(`^(?:https?://)?open\.spotify\.com/(?:intl-[a-zA-Z-]+/)?(?:embed/)?track/([a-zA-Z0-9]+)/?(?:[?#].*)?$`)
	playlistURLRegex = regexp.MustCompile(`^(?:https?://)?open\.spotify\.com/(?:intl-[a-zA-Z-]+/)?(?:embed/)?playlist/([a-zA-Z0-9]+)/?(?:[?#].*)?$`)
	trackURIRegex    = regexp.MustCompile(`^spotify:track:([a-zA-Z0-9]+)$`)
	playlistURIRegex = regexp.MustCompile(`^spotify:playlist:([a-zA-Z0-9]+)$`)

	// Shapes matched after the well-formed patterns failed: the identifier is absent or malformed
	trackShapeRegex    = regexp.MustCompile(`(?i)^(?:(?:https?://)?open\.spotify\.com/(?:intl-[a-z-]+/)?(?:embed/)?track(?:[/?#].*)?|spotify:track(?::.*)?)$`)
	playlistShapeRegex = regexp.MustCompile(`(?i)^(?:(?:https?://)?open\.spotify\.com/(?:intl-[a-z-]+/)?(?:embed/)?playlist(?:[/?#].*)?|spotify:playlist(?::.*)?)$`)
)

// Classify decides whether text is a track reference, a playlist reference or neither.
//
// Spotify track and playlist links (with or without a query suffix) and URIs are catalog
// references. A track link whose identifier is absent or malformed is still a catalog track
// reference with an empty ID, so resolution fails with ErrNotFound. Only empty input and broken
// playlist links are invalid. Any other text is accepted as a free-text track search.
func Classify(text string) types.Reference {
	raw := strings.TrimSpace(text)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = strings.TrimSpace(decoded)
	}

	ref := types.Reference{Kind: types.KindInvalid, Raw: raw}
	if raw == "" {
		return ref
	}

	if m := firstMatch(raw, trackURLRegex, trackURIRegex); m != "" {
		ref.Kind = types.KindTrack
		ref.ID = m
		return ref
	}
	if m := firstMatch(raw, playlistURLRegex, playlistURIRegex); m != "" {
		ref.Kind = types.KindCollection
		ref.ID = m
		return ref
	}
	if trackShapeRegex.MatchString(raw) {
		ref.Kind = types.KindTrack
		return ref
	}
	if playlistShapeRegex.MatchString(raw) {
		return ref
	}

	ref.Kind = types.KindTrack
	ref.Query = raw
	return ref
}

// StripQuery removes a query string or fragment from a reference URL
func StripQuery(reference string) string {
	if i := strings.IndexAny(reference, "?#"); i >= 0 {
		return reference[:i]
	}
	return reference
}

func firstMatch(s string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
