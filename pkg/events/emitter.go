// ABOUTME: Synchronous publish/subscribe hub keyed by event name
// ABOUTME: Supports wildcard listeners, owner-based bulk removal and handle removal
package events

import (
	"log"
	"reflect"
	"sync"
)

// Wildcard subscribes a listener to every event
const Wildcard = "*"

// Event is passed to every listener
type Event struct {
	Name    string
	Data    any
	Context any
}

// Listener receives events
type Listener func(Event)

// Handle identifies a single subscription
type Handle uint64

type subscription struct {
	handle   Handle
	name     string
	owner    any
	listener Listener
}

// Emitter dispatches events to listeners in subscription order.
// Listeners run synchronously on the goroutine that calls Emit.
type Emitter struct {
	mu     sync.RWMutex
	next   Handle
	byName map[string][]subscription
}

// NewEmitter creates an empty emitter
func NewEmitter() *Emitter {
	return &Emitter{
		byName: make(map[string][]subscription),
	}
}

// On subscribes listener to name. Pass Wildcard to receive every event.
// owner is an optional tag used by OffOwner; it may be nil. Owners of an
// uncomparable type such as a map, slice or func never match OffOwner, so
// those subscriptions can only be removed by handle.
func (e *Emitter) On(name string, owner any, listener Listener) Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	h := e.next
	e.byName[name] = append(e.byName[name], subscription{
		handle:   h,
		name:     name,
		owner:    owner,
		listener: listener,
	})
	return h
}

// Any subscribes listener to every event
func (e *Emitter) Any(owner any, listener Listener) Handle {
	return e.On(Wildcard, owner, listener)
}

// Off removes a single subscription. Unknown handles are ignored.
func (e *Emitter) Off(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for name, subs := range e.byName {
		for i, s := range subs {
			if s.handle == h {
				e.remove(name, i)
				return
			}
		}
	}
}

// OffOwner removes every subscription registered with owner
func (e *Emitter) OffOwner(owner any) int {
	if owner == nil || !reflect.TypeOf(owner).Comparable() {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for name, subs := range e.byName {
		kept := subs[:0:0]
		for _, s := range subs {
			if sameOwner(s.owner, owner) {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(e.byName, name)
		} else {
			e.byName[name] = kept
		}
	}
	return removed
}

// Clear removes all subscriptions
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byName = make(map[string][]subscription)
}

// Count returns the number of listeners that would receive name,
// wildcard listeners included
func (e *Emitter) Count(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := len(e.byName[Wildcard])
	if name != Wildcard {
		n += len(e.byName[name])
	}
	return n
}

// Emit delivers an event to the listeners registered for name, then to the
// wildcard listeners, each group in subscription order. A wildcard listener
// subscribed before a named one still runs after it. Subscriptions made
// while Emit runs take effect from the next call.
func (e *Emitter) Emit(name string, context any, data any) {
	e.mu.RLock()
	targets := make([]subscription, 0, len(e.byName[name])+len(e.byName[Wildcard]))
	if name != Wildcard {
		targets = append(targets, e.byName[name]...)
	}
	targets = append(targets, e.byName[Wildcard]...)
	e.mu.RUnlock()

	ev := Event{Name: name, Data: data, Context: context}
	for _, s := range targets {
		invoke(s, ev)
	}
}

// sameOwner compares owners, treating a comparison that panics as unequal.
// Structs holding an uncomparable value pass the Comparable check above.
func sameOwner(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// invoke isolates a listener so a panic does not abort the emit pass
func invoke(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("events: listener %d for %q panicked on %q: %v", s.handle, s.name, ev.Name, r)
		}
	}()
	s.listener(ev)
}

// remove must be called with mu held
func (e *Emitter) remove(name string, i int) {
	subs := e.byName[name]
	kept := make([]subscription, 0, len(subs)-1)
	kept = append(kept, subs[:i]...)
	kept = append(kept, subs[i+1:]...)
	if len(kept) == 0 {
		delete(e.byName, name)
		return
	}
	e.byName[name] = kept
}
