// ABOUTME: Mopidy domain entity definitions
// ABOUTME: Ref, Image, Artist, Album, Track, TlTrack, Playlist, SearchResult, Volume, PlaybackState
package models

import "encoding/json"

// ModelKey is the discriminator field Mopidy adds to every serialized model
const ModelKey = "__model__"

// Model is implemented by every entity that has a tagged map form
type Model interface {
	ModelName() string
	ToMap() map[string]any
}

// Ref types as reported by library.browse and playlists.as_list
const (
	RefAlbum     = "album"
	RefArtist    = "artist"
	RefDirectory = "directory"
	RefPlaylist  = "playlist"
	RefTrack     = "track"
)

// Ref is a lightweight reference to a library object
type Ref struct {
	URI  string
	Name string
	Type string
}

func (r Ref) ModelName() string { return "Ref" }

func (r Ref) ToMap() map[string]any {
	m := tagged(r.ModelName())
	putString(m, "uri", r.URI)
	putString(m, "name", r.Name)
	putString(m, "type", r.Type)
	return m
}

func (r Ref) Equal(o Ref) bool { return r == o }

func (r Ref) MarshalJSON() ([]byte, error) { return json.Marshal(r.ToMap()) }

// Image is an artwork reference with optional dimensions
type Image struct {
	URI    string
	Width  *int
	Height *int
}

func (i Image) ModelName() string { return "Image" }

func (i Image) ToMap() map[string]any {
	m := tagged(i.ModelName())
	putString(m, "uri", i.URI)
	putInt(m, "width", i.Width)
	putInt(m, "height", i.Height)
	return m
}

func (i Image) Equal(o Image) bool {
	return i.URI == o.URI && ptrEqual(i.Width, o.Width) && ptrEqual(i.Height, o.Height)
}

func (i Image) MarshalJSON() ([]byte, error) { return json.Marshal(i.ToMap()) }

// Artist describes a performer, composer or album artist
type Artist struct {
	URI           string
	Name          string
	SortName      string
	MusicBrainzID string
}

func (a Artist) ModelName() string { return "Artist" }

func (a Artist) ToMap() map[string]any {
	m := tagged(a.ModelName())
	putString(m, "uri", a.URI)
	putString(m, "name", a.Name)
	putString(m, "sortname", a.SortName)
	putString(m, "musicbrainz_id", a.MusicBrainzID)
	return m
}

func (a Artist) Equal(o Artist) bool { return a == o }

func (a Artist) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

// Album groups tracks released together
type Album struct {
	URI           string
	Name          string
	Artists       []Artist
	NumTracks     *int
	NumDiscs      *int
	Date          string
	MusicBrainzID string
}

func (a Album) ModelName() string { return "Album" }

func (a Album) ToMap() map[string]any {
	m := tagged(a.ModelName())
	putString(m, "uri", a.URI)
	putString(m, "name", a.Name)
	putEntities(m, "artists", a.Artists)
	putInt(m, "num_tracks", a.NumTracks)
	putInt(m, "num_discs", a.NumDiscs)
	putString(m, "date", a.Date)
	putString(m, "musicbrainz_id", a.MusicBrainzID)
	return m
}

func (a Album) Equal(o Album) bool {
	return a.URI == o.URI &&
		a.Name == o.Name &&
		listEqual(a.Artists, o.Artists) &&
		ptrEqual(a.NumTracks, o.NumTracks) &&
		ptrEqual(a.NumDiscs, o.NumDiscs) &&
		a.Date == o.Date &&
		a.MusicBrainzID == o.MusicBrainzID
}

func (a Album) MarshalJSON() ([]byte, error) { return json.Marshal(a.ToMap()) }

// Track is a playable item. Length is in milliseconds, Bitrate in kbit/s and
// LastModified in milliseconds since the Unix epoch.
type Track struct {
	URI           string
	Name          string
	Artists       []Artist
	Album         *Album
	Composers     []Artist
	Performers    []Artist
	Genre         string
	TrackNo       *int
	DiscNo        *int
	Date          string
	Length        *int
	Bitrate       *int
	Comment       string
	MusicBrainzID string
	LastModified  *int64
}

func (t Track) ModelName() string { return "Track" }

func (t Track) ToMap() map[string]any {
	m := tagged(t.ModelName())
	putString(m, "uri", t.URI)
	putString(m, "name", t.Name)
	putEntities(m, "artists", t.Artists)
	if t.Album != nil {
		m["album"] = t.Album.ToMap()
	}
	putEntities(m, "composers", t.Composers)
	putEntities(m, "performers", t.Performers)
	putString(m, "genre", t.Genre)
	putInt(m, "track_no", t.TrackNo)
	putInt(m, "disc_no", t.DiscNo)
	putString(m, "date", t.Date)
	putInt(m, "length", t.Length)
	putInt(m, "bitrate", t.Bitrate)
	putString(m, "comment", t.Comment)
	putString(m, "musicbrainz_id", t.MusicBrainzID)
	putInt(m, "last_modified", t.LastModified)
	return m
}

func (t Track) Equal(o Track) bool {
	albumEqual := (t.Album == nil && o.Album == nil) ||
		(t.Album != nil && o.Album != nil && t.Album.Equal(*o.Album))
	return t.URI == o.URI &&
		t.Name == o.Name &&
		listEqual(t.Artists, o.Artists) &&
		albumEqual &&
		listEqual(t.Composers, o.Composers) &&
		listEqual(t.Performers, o.Performers) &&
		t.Genre == o.Genre &&
		ptrEqual(t.TrackNo, o.TrackNo) &&
		ptrEqual(t.DiscNo, o.DiscNo) &&
		t.Date == o.Date &&
		ptrEqual(t.Length, o.Length) &&
		ptrEqual(t.Bitrate, o.Bitrate) &&
		t.Comment == o.Comment &&
		t.MusicBrainzID == o.MusicBrainzID &&
		ptrEqual(t.LastModified, o.LastModified)
}

func (t Track) MarshalJSON() ([]byte, error) { return json.Marshal(t.ToMap()) }

// TlTrack pairs a track with its tracklist id
type TlTrack struct {
	TLID  int
	Track Track
}

func (t TlTrack) ModelName() string { return "TlTrack" }

func (t TlTrack) ToMap() map[string]any {
	m := tagged(t.ModelName())
	m["tlid"] = t.TLID
	m["track"] = t.Track.ToMap()
	return m
}

func (t TlTrack) Equal(o TlTrack) bool {
	return t.TLID == o.TLID && t.Track.Equal(o.Track)
}

func (t TlTrack) MarshalJSON() ([]byte, error) { return json.Marshal(t.ToMap()) }

// Playlist is the one mutable entity: it can be renamed and edited locally
// before being passed to playlists.save.
type Playlist struct {
	URI          string
	Name         string
	Tracks       []Track
	LastModified *int64
}

func (p Playlist) ModelName() string { return "Playlist" }

func (p Playlist) ToMap() map[string]any {
	m := tagged(p.ModelName())
	putString(m, "uri", p.URI)
	putString(m, "name", p.Name)
	putEntities(m, "tracks", p.Tracks)
	putInt(m, "last_modified", p.LastModified)
	return m
}

func (p Playlist) Equal(o Playlist) bool {
	return p.URI == o.URI &&
		p.Name == o.Name &&
		listEqual(p.Tracks, o.Tracks) &&
		ptrEqual(p.LastModified, o.LastModified)
}

func (p Playlist) MarshalJSON() ([]byte, error) { return json.Marshal(p.ToMap()) }

// Length returns the number of tracks
func (p Playlist) Length() int { return len(p.Tracks) }

// SetName renames the playlist
func (p *Playlist) SetName(name string) { p.Name = name }

// SetTracks replaces the track list
func (p *Playlist) SetTracks(tracks []Track) {
	p.Tracks = append([]Track(nil), tracks...)
}

// AddTracks appends tracks to the end of the playlist
func (p *Playlist) AddTracks(tracks ...Track) {
	p.Tracks = append(p.Tracks, tracks...)
}

// SearchResult is the per-backend result of library.search
type SearchResult struct {
	URI     string
	Tracks  []Track
	Artists []Artist
	Albums  []Album
}

func (s SearchResult) ModelName() string { return "SearchResult" }

func (s SearchResult) ToMap() map[string]any {
	m := tagged(s.ModelName())
	putString(m, "uri", s.URI)
	putEntities(m, "tracks", s.Tracks)
	putEntities(m, "artists", s.Artists)
	putEntities(m, "albums", s.Albums)
	return m
}

func (s SearchResult) Equal(o SearchResult) bool {
	return s.URI == o.URI &&
		listEqual(s.Tracks, o.Tracks) &&
		listEqual(s.Artists, o.Artists) &&
		listEqual(s.Albums, o.Albums)
}

func (s SearchResult) MarshalJSON() ([]byte, error) { return json.Marshal(s.ToMap()) }

// Volume is a mixer level in the range 0-100
type Volume struct {
	Level int
}

func (v Volume) ModelName() string { return "Volume" }

func (v Volume) ToMap() map[string]any {
	m := tagged(v.ModelName())
	m["volume"] = v.Level
	return m
}

func (v Volume) Equal(o Volume) bool { return v == o }

// Valid reports whether the level is within 0-100
func (v Volume) Valid() bool { return v.Level >= 0 && v.Level <= 100 }

func (v Volume) MarshalJSON() ([]byte, error) { return json.Marshal(v.ToMap()) }

// PlaybackState mirrors core.playback.get_state
type PlaybackState string

const (
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
	StateStopped PlaybackState = "stopped"
)

func (s PlaybackState) ModelName() string { return "PlaybackState" }

func (s PlaybackState) ToMap() map[string]any {
	m := tagged(s.ModelName())
	putString(m, "state", string(s))
	return m
}

func (s PlaybackState) Equal(o PlaybackState) bool { return s == o }

// Valid reports whether s is one of the three states Mopidy knows
func (s PlaybackState) Valid() bool {
	switch s {
	case StatePlaying, StatePaused, StateStopped:
		return true
	}
	return false
}
