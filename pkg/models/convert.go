// ABOUTME: Tagged-map to entity converter and decoder registry
// ABOUTME: Walks decoded JSON, decoding every __model__ object it finds
package models

import (
	"errors"
	"fmt"
)

// ErrUnknownModel is returned when a tagged map names a model with no decoder
var ErrUnknownModel = errors.New("unknown model")

// Decoder builds an entity from its tagged map form
type Decoder func(map[string]any) (Model, error)

// registry is filled in init because the decoders reach back into Convert
var registry map[string]Decoder

func init() {
	registry = map[string]Decoder{
		"Ref":           decodeRef,
		"Image":         decodeImage,
		"Artist":        decodeArtist,
		"Album":         decodeAlbum,
		"Track":         decodeTrack,
		"TlTrack":       decodeTlTrack,
		"Playlist":      decodePlaylist,
		"SearchResult":  decodeSearchResult,
		"Volume":        decodeVolume,
		"PlaybackState": decodePlaybackState,
	}
}

// Registered reports whether name has a decoder
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Convert replaces every tagged map inside v with its entity. Untagged maps
// are converted in place, lists are copied, everything else is returned as is.
func Convert(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if tag, ok := t[ModelKey]; ok {
			return decodeTagged(tag, t)
		}
		for k, e := range t {
			c, err := Convert(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			t[k] = c
		}
		return t, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			c, err := Convert(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

func decodeTagged(tag any, m map[string]any) (Model, error) {
	name, ok := tag.(string)
	if !ok {
		return nil, fmt.Errorf("%w: discriminator is %T, not a string", ErrUnknownModel, tag)
	}
	decode, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	model, err := decode(m)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return model, nil
}

// As converts v (raw or already converted) into T
func As[T any](v any) (T, error) {
	var zero T
	if t, ok := v.(T); ok {
		return t, nil
	}
	c, err := Convert(v)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("expected %T, got %T", zero, c)
	}
	return t, nil
}

// AsList converts a list value into []T. A nil value yields a nil slice.
func AsList[T any](v any) ([]T, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := v.([]T); ok {
		return list, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]T, 0, len(raw))
	for i, e := range raw {
		t, err := As[T](e)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func decodeRef(m map[string]any) (Model, error) {
	var r Ref
	var err error
	if r.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if r.Name, err = getString(m, "name"); err != nil {
		return nil, err
	}
	if r.Type, err = getString(m, "type"); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeImage(m map[string]any) (Model, error) {
	var i Image
	var err error
	if i.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if i.Width, err = getInt(m, "width"); err != nil {
		return nil, err
	}
	if i.Height, err = getInt(m, "height"); err != nil {
		return nil, err
	}
	return i, nil
}

func decodeArtist(m map[string]any) (Model, error) {
	var a Artist
	var err error
	if a.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if a.Name, err = getString(m, "name"); err != nil {
		return nil, err
	}
	if a.SortName, err = getString(m, "sortname"); err != nil {
		return nil, err
	}
	if a.MusicBrainzID, err = getString(m, "musicbrainz_id"); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeAlbum(m map[string]any) (Model, error) {
	var a Album
	var err error
	if a.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if a.Name, err = getString(m, "name"); err != nil {
		return nil, err
	}
	if a.Artists, err = getEntities[Artist](m, "artists"); err != nil {
		return nil, err
	}
	if a.NumTracks, err = getInt(m, "num_tracks"); err != nil {
		return nil, err
	}
	if a.NumDiscs, err = getInt(m, "num_discs"); err != nil {
		return nil, err
	}
	if a.Date, err = getString(m, "date"); err != nil {
		return nil, err
	}
	if a.MusicBrainzID, err = getString(m, "musicbrainz_id"); err != nil {
		return nil, err
	}
	return a, nil
}

func decodeTrack(m map[string]any) (Model, error) {
	var t Track
	var err error
	if t.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if t.Name, err = getString(m, "name"); err != nil {
		return nil, err
	}
	if t.Artists, err = getEntities[Artist](m, "artists"); err != nil {
		return nil, err
	}
	if t.Album, err = getEntity[Album](m, "album"); err != nil {
		return nil, err
	}
	if t.Composers, err = getEntities[Artist](m, "composers"); err != nil {
		return nil, err
	}
	if t.Performers, err = getEntities[Artist](m, "performers"); err != nil {
		return nil, err
	}
	if t.Genre, err = getString(m, "genre"); err != nil {
		return nil, err
	}
	if t.TrackNo, err = getInt(m, "track_no"); err != nil {
		return nil, err
	}
	if t.DiscNo, err = getInt(m, "disc_no"); err != nil {
		return nil, err
	}
	if t.Date, err = getString(m, "date"); err != nil {
		return nil, err
	}
	if t.Length, err = getInt(m, "length"); err != nil {
		return nil, err
	}
	if t.Bitrate, err = getInt(m, "bitrate"); err != nil {
		return nil, err
	}
	if t.Comment, err = getString(m, "comment"); err != nil {
		return nil, err
	}
	if t.MusicBrainzID, err = getString(m, "musicbrainz_id"); err != nil {
		return nil, err
	}
	if t.LastModified, err = getInt64(m, "last_modified"); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeTlTrack(m map[string]any) (Model, error) {
	tlid, err := getInt(m, "tlid")
	if err != nil {
		return nil, err
	}
	if tlid == nil {
		return nil, fmt.Errorf("field %q: missing", "tlid")
	}
	track, err := getEntity[Track](m, "track")
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, fmt.Errorf("field %q: missing", "track")
	}
	return TlTrack{TLID: *tlid, Track: *track}, nil
}

func decodePlaylist(m map[string]any) (Model, error) {
	var p Playlist
	var err error
	if p.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if p.Name, err = getString(m, "name"); err != nil {
		return nil, err
	}
	if p.Tracks, err = getEntities[Track](m, "tracks"); err != nil {
		return nil, err
	}
	if p.LastModified, err = getInt64(m, "last_modified"); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeSearchResult(m map[string]any) (Model, error) {
	var s SearchResult
	var err error
	if s.URI, err = getString(m, "uri"); err != nil {
		return nil, err
	}
	if s.Tracks, err = getEntities[Track](m, "tracks"); err != nil {
		return nil, err
	}
	if s.Artists, err = getEntities[Artist](m, "artists"); err != nil {
		return nil, err
	}
	if s.Albums, err = getEntities[Album](m, "albums"); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeVolume(m map[string]any) (Model, error) {
	level, err := getInt(m, "volume")
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, fmt.Errorf("field %q: missing", "volume")
	}
	return Volume{Level: *level}, nil
}

func decodePlaybackState(m map[string]any) (Model, error) {
	s, err := getString(m, "state")
	if err != nil {
		return nil, err
	}
	return PlaybackState(s), nil
}
