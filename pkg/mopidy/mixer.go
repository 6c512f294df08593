// ABOUTME: core.mixer method group
// ABOUTME: Volume and mute control
package mopidy

import (
	"context"
	"fmt"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// Mixer wraps core.mixer
type Mixer struct {
	call Caller
}

// GetVolume returns the volume in 0..100, nil when no mixer is configured
func (m *Mixer) GetVolume(ctx context.Context) (*int, error) {
	v, err := m.call.Call(ctx, "core.mixer.get_volume", nil)
	if err != nil {
		return nil, err
	}
	return asOptInt(v)
}

// SetVolume reports whether the mixer accepted the change
func (m *Mixer) SetVolume(ctx context.Context, volume int) (bool, error) {
	if !(models.Volume{Level: volume}).Valid() {
		return false, fmt.Errorf("volume %d out of range 0..100", volume)
	}
	v, err := m.call.Call(ctx, "core.mixer.set_volume", params("volume", volume))
	if err != nil {
		return false, err
	}
	return asBool(v)
}

func (m *Mixer) GetMute(ctx context.Context) (bool, error) {
	v, err := m.call.Call(ctx, "core.mixer.get_mute", nil)
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// SetMute reports whether the mixer accepted the change
func (m *Mixer) SetMute(ctx context.Context, mute bool) (bool, error) {
	v, err := m.call.Call(ctx, "core.mixer.set_mute", params("mute", mute))
	if err != nil {
		return false, err
	}
	return asBool(v)
}
