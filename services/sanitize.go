package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const unsafeFilenameChars = `\/*?:"<>|`

// SanitizeFilename removes characters that are not allowed in file names on common
// filesystems and normalizes the result to NFC.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeFilenameChars, r) || r < 0x20 {
			return -1
		}
		return r
	}, norm.NFC.String(name))
	return strings.TrimSpace(cleaned)
}

// TrackFilename builds "<artist> - <title>.<ext>", or "<title>.<ext>" when the artist is unknown
func TrackFilename(artist, title, ext string) string {
	artist = SanitizeFilename(artist)
	title = SanitizeFilename(title)
	if title == "" {
		title = "unknown"
	}
	if artist == "" {
		return title + "." + ext
	}
	return artist + " - " + title + "." + ext
}
