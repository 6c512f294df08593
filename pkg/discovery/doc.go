// ABOUTME: mDNS service discovery package
// ABOUTME: Find Mopidy servers on the local network
// Package discovery finds Mopidy servers announced over mDNS as
// _mopidy-http._tcp.
//
// Example:
//
//	servers, err := discovery.Discover(ctx, discovery.Config{})
//	for _, s := range servers {
//	    fmt.Printf("Found: %s at %s\n", s.Name, s.WebSocketURL())
//	}
package discovery
