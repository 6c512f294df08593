// ABOUTME: core.playlists method group
// ABOUTME: Listing, creating, saving and deleting stored playlists
package mopidy

import (
	"context"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// Playlists wraps core.playlists
type Playlists struct {
	call Caller
}

// AsList returns a reference to every playlist
func (p *Playlists) AsList(ctx context.Context) ([]models.Ref, error) {
	v, err := p.call.Call(ctx, "core.playlists.as_list", nil)
	if err != nil {
		return nil, err
	}
	return models.AsList[models.Ref](v)
}

// GetItems returns track references for the playlist, nil if it is unknown
func (p *Playlists) GetItems(ctx context.Context, uri string) ([]models.Ref, error) {
	v, err := p.call.Call(ctx, "core.playlists.get_items", params("uri", uri))
	if err != nil {
		return nil, err
	}
	return models.AsList[models.Ref](v)
}

// Lookup returns the full playlist, nil if it is unknown
func (p *Playlists) Lookup(ctx context.Context, uri string) (*models.Playlist, error) {
	v, err := p.call.Call(ctx, "core.playlists.lookup", params("uri", uri))
	if err != nil {
		return nil, err
	}
	return asOptModel[models.Playlist](v)
}

// Refresh reloads playlists from backends with uriScheme, or all when empty
func (p *Playlists) Refresh(ctx context.Context, uriScheme string) error {
	_, err := p.call.Call(ctx, "core.playlists.refresh", params("uri_scheme", nilIfEmpty(uriScheme)))
	return err
}

// Create makes an empty playlist. The backend is picked by uriScheme, or
// by the server when it is empty.
func (p *Playlists) Create(ctx context.Context, name, uriScheme string) (*models.Playlist, error) {
	v, err := p.call.Call(ctx, "core.playlists.create",
		params("name", name, "uri_scheme", nilIfEmpty(uriScheme)))
	if err != nil {
		return nil, err
	}
	return asOptModel[models.Playlist](v)
}

// Save stores playlist and returns the saved version, nil if the backend
// refused it
func (p *Playlists) Save(ctx context.Context, playlist models.Playlist) (*models.Playlist, error) {
	v, err := p.call.Call(ctx, "core.playlists.save", params("playlist", playlist))
	if err != nil {
		return nil, err
	}
	return asOptModel[models.Playlist](v)
}

// Delete removes the playlist and reports whether it existed
func (p *Playlists) Delete(ctx context.Context, uri string) (bool, error) {
	v, err := p.call.Call(ctx, "core.playlists.delete", params("uri", uri))
	if err != nil {
		return false, err
	}
	return asBool(v)
}

// GetURISchemes lists the schemes playlist backends handle
func (p *Playlists) GetURISchemes(ctx context.Context) ([]string, error) {
	v, err := p.call.Call(ctx, "core.playlists.get_uri_schemes", nil)
	if err != nil {
		return nil, err
	}
	return asStrings(v)
}
