// ABOUTME: Request parameter building and result coercion for method groups
// ABOUTME: Drops nil parameters and turns decoded JSON values into Go types
package mopidy

import (
	"fmt"
	"math"
	"reflect"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// params builds a parameter map from key/value pairs, skipping nil values.
// It returns nil when nothing is left so the envelope omits params.
func params(kv ...any) map[string]any {
	var out map[string]any
	for i := 0; i+1 < len(kv); i += 2 {
		if isNil(kv[i+1]) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[kv[i].(string)] = kv[i+1]
	}
	return out
}

// opt unwraps an optional argument, mapping a nil pointer to an untyped nil
func opt[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// isNil also catches nil maps, slices and pointers wrapped in an interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// optMap maps an empty map to an untyped nil
func optMap[K comparable, V any](m map[K]V) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// optSlice maps an empty slice to an untyped nil
func optSlice[T any](s []T) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func asStrings(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]string, 0, len(list))
	for i, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected string, got %T", i, e)
		}
		out = append(out, s)
	}
	return out, nil
}

func asInt(v any) (int, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}

// asOptInt maps null to nil
func asOptInt(v any) (*int, error) {
	if v == nil {
		return nil, nil
	}
	n, err := asInt(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

func asMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return m, nil
}

// asOptModel maps null to nil and decodes anything else into T
func asOptModel[T any](v any) (*T, error) {
	if v == nil {
		return nil, nil
	}
	t, err := models.As[T](v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// asModelsByURI decodes the {uri: [entity, ...]} results of lookups
func asModelsByURI[T any](v any) (map[string][]T, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]T, len(m))
	for uri, list := range m {
		items, err := models.AsList[T](list)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", uri, err)
		}
		out[uri] = items
	}
	return out, nil
}

func errExpectedList(v any) error {
	return fmt.Errorf("expected list, got %T", v)
}
