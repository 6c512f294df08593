// ABOUTME: core.history method group
// ABOUTME: Recently played track references with timestamps
package mopidy

import (
	"context"
	"fmt"

	"github.com/harperreed/mopidy-go/pkg/models"
)

// History wraps core.history
type History struct {
	call Caller
}

// HistoryEntry is one played track
type HistoryEntry struct {
	// Timestamp is milliseconds since the Unix epoch
	Timestamp int64
	Ref       models.Ref
}

// GetHistory returns played tracks, most recent first
func (h *History) GetHistory(ctx context.Context) ([]HistoryEntry, error) {
	v, err := h.call.Call(ctx, "core.history.get_history", nil)
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

	entries := make([]HistoryEntry, 0, len(list))
	for i, e := range list {
		pair, ok := e.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("[%d]: expected [timestamp, ref], got %v", i, e)
		}
		ts, ok := pair[0].(float64)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected timestamp, got %T", i, pair[0])
		}
		ref, err := models.As[models.Ref](pair[1])
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		entries = append(entries, HistoryEntry{Timestamp: int64(ts), Ref: ref})
	}
	return entries, nil
}

func (h *History) GetLength(ctx context.Context) (int, error) {
	v, err := h.call.Call(ctx, "core.history.get_length", nil)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}
