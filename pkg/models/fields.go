// ABOUTME: Field helpers shared by the model encoders and decoders
// ABOUTME: Absent/null handling, numeric coercion and list comparison
package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// getString reads an optional string field. Absent and null both yield "".
func getString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

func getInt(m map[string]any, key string) (*int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	i := int(n)
	return &i, nil
}

func getInt64(m map[string]any, key string) (*int64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &n, nil
}

// toInt64 coerces the numeric shapes encoding/json and hand-built maps produce.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

// getEntity decodes an optional nested entity of type T.
func getEntity[T any](m map[string]any, key string) (*T, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	e, err := As[T](v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return &e, nil
}

// getEntities decodes an optional list of nested entities of type T.
func getEntities[T any](m map[string]any, key string) ([]T, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, err := AsList[T](v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return list, nil
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putInt[T int | int64](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

func putEntities[T Model](m map[string]any, key string, list []T) {
	if len(list) == 0 {
		return
	}
	out := make([]any, len(list))
	for i, e := range list {
		out[i] = e.ToMap()
	}
	m[key] = out
}

func tagged(name string) map[string]any {
	return map[string]any{ModelKey: name}
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// listEqual compares element by element; nil and empty lists are equal.
func listEqual[T interface{ Equal(T) bool }](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
