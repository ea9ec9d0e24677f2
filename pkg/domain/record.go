package domain

import (
	"encoding/json"
	"strconv"
)

// reserved keys carried next to item fields on the wire
const (
	keyID         = "_id"
	keyAltID      = "id"
	keyLikedBy    = "likedBy"
	keyDislikedBy = "dislikedBy"
)

// Record is an item as the authority stores and serves it, with the ids of users who voted
type Record struct {
	ID         string
	Kind       Kind
	Fields     map[string]any
	Rank       int64 // ordering key, higher first
	LikedBy    []string
	DislikedBy []string
}

// NewRecord makes a record from a raw object, the id is taken from "_id" or "id" and
// vote lists are dropped, those are owned by the vote storage.
func NewRecord(kind Kind, raw map[string]any) Record {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		switch k {
		case keyID, keyAltID, keyLikedBy, keyDislikedBy:
			continue
		}
		fields[k] = v
	}
	return Record{ID: IDOf(raw), Kind: kind, Fields: fields}
}

// Tally returns counts of the record's voters
func (r Record) Tally() Tally {
	return Tally{Likes: len(r.LikedBy), Dislikes: len(r.DislikedBy)}
}

// MarshalJSON renders the record as a flat object with _id, likedBy and dislikedBy
func (r Record) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		obj[k] = v
	}
	obj[keyID] = r.ID
	obj[keyLikedBy] = nonNil(r.LikedBy)
	obj[keyDislikedBy] = nonNil(r.DislikedBy)
	return json.Marshal(obj)
}

// IDOf extracts the item id from "_id" or "id", numbers are formatted as strings.
// Returns empty string if neither is usable.
func IDOf(raw map[string]any) string {
	for _, key := range []string{keyID, keyAltID} {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
