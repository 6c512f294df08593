// ABOUTME: Mopidy domain model package
// ABOUTME: Typed entities and the __model__ tagged-map converter
// Package models defines the Mopidy domain entities and converts between
// their tagged structural form and typed Go values.
//
// Mopidy serializes models as JSON objects carrying a "__model__" key.
// Convert walks an arbitrary decoded JSON value and replaces every tagged
// object with its typed entity, leaving untagged maps, lists and scalars
// structurally intact:
//
//	v, err := models.Convert(raw)
//	if track, ok := v.(models.Track); ok {
//	    fmt.Println(track.Name)
//	}
//
// Every entity encodes back to a tagged map with ToMap, omitting absent
// fields, so Convert(x.ToMap()) reproduces a value equal to x.
package models
