// ABOUTME: core.library method group
// ABOUTME: Browsing, searching and looking up tracks and artwork
package mopidy

import (
	"context"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// Library wraps core.library
type Library struct {
	call Caller
}

// Query maps a field such as "artist" or "any" to the values to match
type Query map[string][]string

// Browse lists the directory at uri; an empty uri lists the root
func (l *Library) Browse(ctx context.Context, uri string) ([]models.Ref, error) {
	// Root browsing needs an explicit null uri
	v, err := l.call.Call(ctx, "core.library.browse", map[string]any{"uri": nilIfEmpty(uri)})
	if err != nil {
		return nil, err
	}
	return models.AsList[models.Ref](v)
}

// Search finds tracks, albums and artists. One result is returned per
// backend; uris limits the search to those roots.
func (l *Library) Search(ctx context.Context, query Query, uris []string, exact bool) ([]models.SearchResult, error) {
	var q any
	if len(query) > 0 {
		q = map[string][]string(query)
	}
	v, err := l.call.Call(ctx, "core.library.search",
		params("query", q, "uris", optSlice(uris), "exact", exact))
	if err != nil {
		return nil, err
	}
	return models.AsList[models.SearchResult](v)
}

// Lookup returns the tracks behind each uri
func (l *Library) Lookup(ctx context.Context, uris []string) (map[string][]models.Track, error) {
	v, err := l.call.Call(ctx, "core.library.lookup", params("uris", uris))
	if err != nil {
		return nil, err
	}
	return asModelsByURI[models.Track](v)
}

// Refresh rescans the library below uri, or everything when uri is empty
func (l *Library) Refresh(ctx context.Context, uri string) error {
	_, err := l.call.Call(ctx, "core.library.refresh", params("uri", nilIfEmpty(uri)))
	return err
}

// GetImages returns the artwork for each uri
func (l *Library) GetImages(ctx context.Context, uris []string) (map[string][]models.Image, error) {
	v, err := l.call.Call(ctx, "core.library.get_images", params("uris", uris))
	if err != nil {
		return nil, err
	}
	return asModelsByURI[models.Image](v)
}

// GetDistinct lists the distinct values of field, e.g. every "albumartist",
// optionally narrowed by query
func (l *Library) GetDistinct(ctx context.Context, field string, query Query) ([]any, error) {
	var q any
	if len(query) > 0 {
		q = map[string][]string(query)
	}
	v, err := l.call.Call(ctx, "core.library.get_distinct", params("field", field, "query", q))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, errExpectedList(v)
	}
	return list, nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
