// ABOUTME: Tests for the tagged-map converter
// ABOUTME: Covers round-trips, recursive conversion and unknown discriminators
package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func int64Ptr(i int64) *int64 { return &i }

func fullTrack() Track {
	return Track{
		URI:     "local:track:one.flac",
		Name:    "One",
		Artists: []Artist{{URI: "local:artist:a", Name: "A", SortName: "A, The", MusicBrainzID: "mb-a"}},
		Album: &Album{
			URI:       "local:album:x",
			Name:      "X",
			Artists:   []Artist{{Name: "A"}},
			NumTracks: intPtr(10),
			NumDiscs:  intPtr(1),
			Date:      "1999",
		},
		Composers:     []Artist{{Name: "C"}},
		Performers:    []Artist{{Name: "P"}},
		Genre:         "Rock",
		TrackNo:       intPtr(0),
		DiscNo:        intPtr(1),
		Date:          "1999-01-01",
		Length:        intPtr(215000),
		Bitrate:       intPtr(320),
		Comment:       "remastered",
		MusicBrainzID: "mb-1",
		LastModified:  int64Ptr(1700000000000),
	}
}

func roundTrip(t *testing.T, m Model) any {
	t.Helper()
	out, err := Convert(m.ToMap())
	require.NoError(t, err)
	return out
}

func TestRoundTripAllFields(t *testing.T) {
	track := fullTrack()
	models := []Model{
		Ref{URI: "local:directory", Name: "Local", Type: RefDirectory},
		Image{URI: "/local/abc.jpg", Width: intPtr(640), Height: intPtr(480)},
		Artist{URI: "a", Name: "Artist", SortName: "Artist", MusicBrainzID: "mb"},
		*track.Album,
		track,
		TlTrack{TLID: 7, Track: track},
		Playlist{URI: "m3u:list.m3u", Name: "List", Tracks: []Track{track, {URI: "b"}}, LastModified: int64Ptr(42)},
		SearchResult{URI: "local:search", Tracks: []Track{track}, Artists: track.Artists, Albums: []Album{*track.Album}},
		Volume{Level: 55},
		StatePaused,
	}

	for _, m := range models {
		t.Run(m.ModelName(), func(t *testing.T) {
			out := roundTrip(t, m)
			assert.Equal(t, m, out)
		})
	}
}

func TestRoundTripAbsentFields(t *testing.T) {
	models := []Model{
		Ref{},
		Image{},
		Artist{},
		Album{},
		Track{},
		TlTrack{TLID: 1},
		Playlist{},
		SearchResult{},
		Volume{},
		PlaybackState(""),
	}

	for _, m := range models {
		t.Run(m.ModelName(), func(t *testing.T) {
			out := roundTrip(t, m)
			assert.Equal(t, m, out)
		})
	}
}

func TestToMapOmitsAbsentFields(t *testing.T) {
	m := Track{URI: "x"}.ToMap()

	assert.Equal(t, map[string]any{ModelKey: "Track", "uri": "x"}, m)
	for key, v := range m {
		assert.NotNil(t, v, "field %s should be omitted, not null", key)
	}
}

func TestConvertUnknownModel(t *testing.T) {
	_, err := Convert(map[string]any{ModelKey: "Spaceship", "uri": "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownModel))
}

func TestConvertUnknownModelNested(t *testing.T) {
	raw := []any{
		map[string]any{"inner": map[string]any{ModelKey: "Nope"}},
	}
	_, err := Convert(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestConvertNonStringDiscriminator(t *testing.T) {
	_, err := Convert(map[string]any{ModelKey: 12.0})
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestConvertUntaggedStructures(t *testing.T) {
	raw := map[string]any{
		"local:track:a": []any{
			map[string]any{ModelKey: "Image", "uri": "/a.jpg", "width": 10.0},
		},
		"count":   3.0,
		"nothing": nil,
		"nested":  map[string]any{"ref": map[string]any{ModelKey: "Ref", "uri": "u", "type": "track"}},
	}

	out, err := Convert(raw)
	require.NoError(t, err)

	m, ok := out.(map[string]any)
	require.True(t, ok, "untagged map should stay a map")
	assert.Equal(t, []any{Image{URI: "/a.jpg", Width: intPtr(10)}}, m["local:track:a"])
	assert.Equal(t, 3.0, m["count"])
	assert.Nil(t, m["nothing"])
	assert.Equal(t, Ref{URI: "u", Type: RefTrack}, m["nested"].(map[string]any)["ref"])
}

func TestConvertScalarsPassThrough(t *testing.T) {
	for _, v := range []any{nil, "playing", 42.0, true} {
		out, err := Convert(v)
		require.NoError(t, err)
		assert.Equal(t, v, out)
	}
}

func TestConvertFromJSON(t *testing.T) {
	payload := `{"__model__":"TlTrack","tlid":3,"track":{"__model__":"Track","uri":"spotify:track:1","name":"Song","length":1000,
		"artists":[{"__model__":"Artist","name":"Band"}]}}`

	var raw any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	out, err := Convert(raw)
	require.NoError(t, err)

	want := TlTrack{TLID: 3, Track: Track{
		URI:     "spotify:track:1",
		Name:    "Song",
		Length:  intPtr(1000),
		Artists: []Artist{{Name: "Band"}},
	}}
	assert.Equal(t, want, out)
}

func TestConvertWrongFieldType(t *testing.T) {
	_, err := Convert(map[string]any{ModelKey: "Track", "length": "long"})
	assert.Error(t, err)

	_, err = Convert(map[string]any{ModelKey: "Album", "artists": "nobody"})
	assert.Error(t, err)
}

func TestTlTrackRequiresFields(t *testing.T) {
	_, err := Convert(map[string]any{ModelKey: "TlTrack", "tlid": 1.0})
	assert.Error(t, err)

	_, err = Convert(map[string]any{ModelKey: "TlTrack", "track": map[string]any{ModelKey: "Track"}})
	assert.Error(t, err)
}

func TestAsList(t *testing.T) {
	refs, err := AsList[Ref]([]any{
		map[string]any{ModelKey: "Ref", "uri": "a"},
		Ref{URI: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Ref{{URI: "a"}, {URI: "b"}}, refs)

	_, err = AsList[Ref]([]any{map[string]any{ModelKey: "Track"}})
	assert.Error(t, err)

	empty, err := AsList[Ref](nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{"Ref", "Image", "Artist", "Album", "Track", "TlTrack", "Playlist", "SearchResult", "Volume", "PlaybackState"} {
		assert.True(t, Registered(name), name)
	}
	assert.False(t, Registered("Spaceship"))
}

func TestConvertNestedTaggedEntities(t *testing.T) {
	out, err := Convert(map[string]any{
		ModelKey: "Album",
		"name":   "X",
		"artists": []any{
			map[string]any{ModelKey: "Artist", "name": "A"},
			map[string]any{ModelKey: "Artist", "name": "B"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Album{Name: "X", Artists: []Artist{{Name: "A"}, {Name: "B"}}}, out)
}
