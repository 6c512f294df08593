// ABOUTME: Event dispatch package
// ABOUTME: Name-keyed listener registry used by the protocol client
// Package events provides the publish/subscribe hub the protocol client
// emits connection and server events through.
//
// Example:
//
//	em := events.NewEmitter()
//	h := em.On("event:volumeChanged", nil, func(ev events.Event) {
//	    fmt.Println(ev.Data)
//	})
//	defer em.Off(h)
package events
