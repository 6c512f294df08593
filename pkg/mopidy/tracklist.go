// ABOUTME: core.tracklist method group
// ABOUTME: Queue editing, queue queries and playback options
package mopidy

import (
	"context"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// Tracklist wraps core.tracklist
type Tracklist struct {
	call Caller
}

// Criteria selects tracklist entries, e.g. {"tlid": [1, 2]} or {"uri": [...]}
type Criteria map[string][]any

// Add appends uris to the tracklist, or inserts them at atPosition
func (t *Tracklist) Add(ctx context.Context, uris []string, atPosition *int) ([]models.TlTrack, error) {
	v, err := t.call.Call(ctx, "core.tracklist.add",
		params("uris", optSlice(uris), "at_position", opt(atPosition)))
	if err != nil {
		return nil, err
	}
	return models.AsList[models.TlTrack](v)
}

// Remove deletes the entries matching criteria and returns them
func (t *Tracklist) Remove(ctx context.Context, criteria Criteria) ([]models.TlTrack, error) {
	v, err := t.call.Call(ctx, "core.tracklist.remove", params("criteria", optMap(criteria)))
	if err != nil {
		return nil, err
	}
	return models.AsList[models.TlTrack](v)
}

func (t *Tracklist) Clear(ctx context.Context) error {
	_, err := t.call.Call(ctx, "core.tracklist.clear", nil)
	return err
}

// Move relocates the slice [start, end) to toPosition
func (t *Tracklist) Move(ctx context.Context, start, end, toPosition int) error {
	_, err := t.call.Call(ctx, "core.tracklist.move",
		params("start", start, "end", end, "to_position", toPosition))
	return err
}

// Shuffle shuffles the slice [start, end); nil bounds mean the whole list
func (t *Tracklist) Shuffle(ctx context.Context, start, end *int) error {
	_, err := t.call.Call(ctx, "core.tracklist.shuffle", params("start", opt(start), "end", opt(end)))
	return err
}

func (t *Tracklist) GetTlTracks(ctx context.Context) ([]models.TlTrack, error) {
	v, err := t.call.Call(ctx, "core.tracklist.get_tl_tracks", nil)
	if err != nil {
		return nil, err
	}
	return models.AsList[models.TlTrack](v)
}

func (t *Tracklist) GetTracks(ctx context.Context) ([]models.Track, error) {
	v, err := t.call.Call(ctx, "core.tracklist.get_tracks", nil)
	if err != nil {
		return nil, err
	}
	return models.AsList[models.Track](v)
}

// Index returns the position of tlid, or of the current track when tlid is
// nil. It is nil when the entry is not in the tracklist.
func (t *Tracklist) Index(ctx context.Context, tlid *int) (*int, error) {
	v, err := t.call.Call(ctx, "core.tracklist.index", params("tlid", opt(tlid)))
	if err != nil {
		return nil, err
	}
	return asOptInt(v)
}

// GetVersion returns the tracklist version, bumped on every change
func (t *Tracklist) GetVersion(ctx context.Context) (int, error) {
	v, err := t.call.Call(ctx, "core.tracklist.get_version", nil)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

func (t *Tracklist) GetLength(ctx context.Context) (int, error) {
	v, err := t.call.Call(ctx, "core.tracklist.get_length", nil)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

// Slice returns the entries in [start, end)
func (t *Tracklist) Slice(ctx context.Context, start, end int) ([]models.TlTrack, error) {
	v, err := t.call.Call(ctx, "core.tracklist.slice", params("start", start, "end", end))
	if err != nil {
		return nil, err
	}
	return models.AsList[models.TlTrack](v)
}

func (t *Tracklist) Filter(ctx context.Context, criteria Criteria) ([]models.TlTrack, error) {
	v, err := t.call.Call(ctx, "core.tracklist.filter", params("criteria", optMap(criteria)))
	if err != nil {
		return nil, err
	}
	return models.AsList[models.TlTrack](v)
}

// GetEotTlid returns the tlid played after the current track ends
func (t *Tracklist) GetEotTlid(ctx context.Context) (*int, error) {
	return t.tlid(ctx, "core.tracklist.get_eot_tlid")
}

// GetNextTlid returns the tlid played by Playback.Next
func (t *Tracklist) GetNextTlid(ctx context.Context) (*int, error) {
	return t.tlid(ctx, "core.tracklist.get_next_tlid")
}

// GetPreviousTlid returns the tlid played by Playback.Previous
func (t *Tracklist) GetPreviousTlid(ctx context.Context) (*int, error) {
	return t.tlid(ctx, "core.tracklist.get_previous_tlid")
}

func (t *Tracklist) tlid(ctx context.Context, method string) (*int, error) {
	v, err := t.call.Call(ctx, method, nil)
	if err != nil {
		return nil, err
	}
	return asOptInt(v)
}

func (t *Tracklist) GetConsume(ctx context.Context) (bool, error) {
	return t.option(ctx, "core.tracklist.get_consume")
}

func (t *Tracklist) SetConsume(ctx context.Context, value bool) error {
	return t.setOption(ctx, "core.tracklist.set_consume", value)
}

func (t *Tracklist) GetRandom(ctx context.Context) (bool, error) {
	return t.option(ctx, "core.tracklist.get_random")
}

func (t *Tracklist) SetRandom(ctx context.Context, value bool) error {
	return t.setOption(ctx, "core.tracklist.set_random", value)
}

func (t *Tracklist) GetRepeat(ctx context.Context) (bool, error) {
	return t.option(ctx, "core.tracklist.get_repeat")
}

func (t *Tracklist) SetRepeat(ctx context.Context, value bool) error {
	return t.setOption(ctx, "core.tracklist.set_repeat", value)
}

func (t *Tracklist) GetSingle(ctx context.Context) (bool, error) {
	return t.option(ctx, "core.tracklist.get_single")
}

func (t *Tracklist) SetSingle(ctx context.Context, value bool) error {
	return t.setOption(ctx, "core.tracklist.set_single", value)
}

func (t *Tracklist) option(ctx context.Context, method string) (bool, error) {
	v, err := t.call.Call(ctx, method, nil)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (t *Tracklist) setOption(ctx context.Context, method string, value bool) error {
	_, err := t.call.Call(ctx, method, params("value", value))
	return err
}
