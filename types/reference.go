package types

// ReferenceKind is the classification of a raw user input
type ReferenceKind string

const (
	KindTrack      ReferenceKind = "track"
	KindCollection ReferenceKind = "collection"
	KindInvalid    ReferenceKind = "invalid"
)

// Reference is a parsed track or collection reference.
// Free-text track references carry the search text in Query and no ID. A catalog reference
// whose identifier was absent or malformed has neither.
type Reference struct {
	Kind  ReferenceKind `json:"kind"`
	ID    string        `json:"id,omitempty"`
	Query string        `json:"query,omitempty"`
	Raw   string        `json:"raw"`
}

// IsCatalog reports whether the reference must be resolved through the catalog
func (r Reference) IsCatalog() bool {
	return r.Query == ""
}

// TrackRef builds a catalog track reference from a bare identifier
func TrackRef(id string) Reference {
	return Reference{Kind: KindTrack, ID: id, Raw: "spotify:track:" + id}
}
