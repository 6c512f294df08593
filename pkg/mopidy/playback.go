// ABOUTME: core.playback method group
// ABOUTME: Transport controls and current-track queries
package mopidy

import (
	"context"
	"fmt"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// Playback wraps core.playback
type Playback struct {
	call Caller
}

// Play starts playback. With a nil tlid it plays the current track or the
// first in the tracklist.
func (p *Playback) Play(ctx context.Context, tlid *int) error {
	_, err := p.call.Call(ctx, "core.playback.play", params("tlid", opt(tlid)))
	return err
}

// PlayTlTrack starts playback of a specific tracklist entry
func (p *Playback) PlayTlTrack(ctx context.Context, tlTrack models.TlTrack) error {
	_, err := p.call.Call(ctx, "core.playback.play", params("tl_track", tlTrack))
	return err
}

func (p *Playback) Next(ctx context.Context) error {
	_, err := p.call.Call(ctx, "core.playback.next", nil)
	return err
}

func (p *Playback) Previous(ctx context.Context) error {
	_, err := p.call.Call(ctx, "core.playback.previous", nil)
	return err
}

func (p *Playback) Stop(ctx context.Context) error {
	_, err := p.call.Call(ctx, "core.playback.stop", nil)
	return err
}

func (p *Playback) Pause(ctx context.Context) error {
	_, err := p.call.Call(ctx, "core.playback.pause", nil)
	return err
}

func (p *Playback) Resume(ctx context.Context) error {
	_, err := p.call.Call(ctx, "core.playback.resume", nil)
	return err
}

// Seek jumps to timePosition milliseconds into the current track
func (p *Playback) Seek(ctx context.Context, timePosition int) (bool, error) {
	v, err := p.call.Call(ctx, "core.playback.seek", params("time_position", timePosition))
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// GetCurrentTlTrack returns nil when nothing is playing
func (p *Playback) GetCurrentTlTrack(ctx context.Context) (*models.TlTrack, error) {
	v, err := p.call.Call(ctx, "core.playback.get_current_tl_track", nil)
	if err != nil {
		return nil, err
	}
	return asOptModel[models.TlTrack](v)
}

// GetCurrentTrack returns nil when nothing is playing
func (p *Playback) GetCurrentTrack(ctx context.Context) (*models.Track, error) {
	v, err := p.call.Call(ctx, "core.playback.get_current_track", nil)
	if err != nil {
		return nil, err
	}
	return asOptModel[models.Track](v)
}

// GetCurrentTlid returns nil when nothing is playing
func (p *Playback) GetCurrentTlid(ctx context.Context) (*int, error) {
	v, err := p.call.Call(ctx, "core.playback.get_current_tlid", nil)
	if err != nil {
		return nil, err
	}
	return asOptInt(v)
}

// GetStreamTitle returns the stream's current title, "" if there is none
func (p *Playback) GetStreamTitle(ctx context.Context) (string, error) {
	v, err := p.call.Call(ctx, "core.playback.get_stream_title", nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// GetTimePosition returns the position in the current track in milliseconds
func (p *Playback) GetTimePosition(ctx context.Context) (int, error) {
	v, err := p.call.Call(ctx, "core.playback.get_time_position", nil)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

func (p *Playback) GetState(ctx context.Context) (models.PlaybackState, error) {
	v, err := p.call.Call(ctx, "core.playback.get_state", nil)
	if err != nil {
		return "", err
	}
	s, err := asString(v)
	if err != nil {
		return "", err
	}
	state := models.PlaybackState(s)
	if !state.Valid() {
		return "", fmt.Errorf("unknown playback state %q", s)
	}
	return state, nil
}

// SetState moves playback to state without changing the current track
func (p *Playback) SetState(ctx context.Context, state models.PlaybackState) error {
	if !state.Valid() {
		return fmt.Errorf("invalid playback state %q", state)
	}
	_, err := p.call.Call(ctx, "core.playback.set_state", params("new_state", string(state)))
	return err
}
