// ABOUTME: Version information for mopidy-go
// ABOUTME: Single source of truth for product name and version strings
package version

// Version is the current release, overridden at build time with
// -ldflags "-X github.com/harperreed/mopidy-go/internal/version.Version=..."
var Version = "0.3.0"

const (
	// Product is the name reported to servers and shown in the TUI
	Product = "mopidy-go"

	// Manufacturer is the project owner
	Manufacturer = "harperreed"
)

// UserAgent is sent in the WebSocket handshake
func UserAgent() string {
	return Product + "/" + Version
}
