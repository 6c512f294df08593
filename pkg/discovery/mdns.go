// ABOUTME: mDNS discovery of Mopidy HTTP servers
// ABOUTME: One-shot lookups and a continuous browse loop for _mopidy-http._tcp
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	// DefaultService is the type Mopidy's zeroconf publisher announces
	DefaultService = "_mopidy-http._tcp"
	DefaultDomain  = "local"
	DefaultTimeout = 3 * time.Second

	// DefaultPath is Mopidy's WebSocket endpoint on the HTTP server
	DefaultPath = "/mopidy/ws"
)

// Config holds discovery configuration
type Config struct {
	Service string
	Domain  string
	// Timeout bounds one query round
	Timeout time.Duration
}

func (c *Config) defaults() {
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.Domain == "" {
		c.Domain = DefaultDomain
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name string
	Host string
	Port int
	// Path is the WebSocket path, from the "path" TXT record when present
	Path string
}

// Addr returns host:port
func (s ServerInfo) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// WebSocketURL returns the JSON-RPC endpoint of the server
func (s ServerInfo) WebSocketURL() string {
	return "ws://" + s.Addr() + s.Path
}

// HTTPURL returns the server's HTTP base, used to resolve artwork paths
func (s ServerInfo) HTTPURL() string {
	return "http://" + s.Addr()
}

// queryFunc matches mdns.Query so tests can feed entries directly
type queryFunc func(*mdns.QueryParam) error

// Manager browses for servers until stopped
type Manager struct {
	config  Config
	query   queryFunc
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo

	mu   sync.Mutex
	seen map[string]bool
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	config.defaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:  config,
		query:   mdns.Query,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
		seen:    make(map[string]bool),
	}
}

// Browse searches for servers in the background. Each server is reported
// once on Servers.
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		err := lookup(m.query, m.config, func(server ServerInfo) {
			if !m.markSeen(server) {
				return
			}
			log.Printf("Discovered Mopidy server: %s at %s", server.Name, server.Addr())
			select {
			case m.servers <- &server:
			case <-m.ctx.Done():
			}
		})
		if err != nil {
			log.Printf("mDNS query failed: %v", err)
			select {
			case <-time.After(m.config.Timeout):
			case <-m.ctx.Done():
				return
			}
		}
	}
}

func (m *Manager) markSeen(s ServerInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := s.Name + "@" + s.Addr()
	if m.seen[key] {
		return false
	}
	m.seen[key] = true
	return true
}

// Servers returns the channel of discovered servers
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

// Discover runs a single query round and returns the servers that answered
func Discover(ctx context.Context, config Config) ([]ServerInfo, error) {
	config.defaults()
	return discover(ctx, mdns.Query, config)
}

func discover(ctx context.Context, query queryFunc, config Config) ([]ServerInfo, error) {
	var (
		mu      sync.Mutex
		servers []ServerInfo
		seen    = map[string]bool{}
	)
	done := make(chan error, 1)
	go func() {
		done <- lookup(query, config, func(s ServerInfo) {
			mu.Lock()
			defer mu.Unlock()
			if !seen[s.Addr()] {
				seen[s.Addr()] = true
				servers = append(servers, s)
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("mdns query %s: %w", config.Service, err)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	return servers, nil
}

// First returns the first server found within the timeout
func First(ctx context.Context, config Config) (ServerInfo, error) {
	servers, err := Discover(ctx, config)
	if err != nil {
		return ServerInfo{}, err
	}
	if len(servers) == 0 {
		return ServerInfo{}, fmt.Errorf("no Mopidy servers found")
	}
	return servers[0], nil
}

// lookup runs one query round, calling found for every usable entry
func lookup(query queryFunc, config Config, found func(ServerInfo)) error {
	entries := make(chan *mdns.ServiceEntry, 10)
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for entry := range entries {
			if server, ok := entryToServer(entry); ok {
				found(server)
			}
		}
	}()

	err := query(&mdns.QueryParam{
		Service:             config.Service,
		Domain:              config.Domain,
		Timeout:             config.Timeout,
		Entries:             entries,
		DisableIPv6:         true,
		WantUnicastResponse: false,
	})
	close(entries)
	<-finished
	return err
}

// entryToServer converts an mDNS answer; entries without an address are skipped
func entryToServer(entry *mdns.ServiceEntry) (ServerInfo, bool) {
	var host string
	switch {
	case entry.AddrV4 != nil:
		host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		host = entry.AddrV6.String()
	case entry.Host != "":
		host = strings.TrimSuffix(entry.Host, ".")
	default:
		return ServerInfo{}, false
	}
	if entry.Port <= 0 {
		return ServerInfo{}, false
	}

	server := ServerInfo{
		Name: instanceName(entry.Name),
		Host: host,
		Port: entry.Port,
		Path: DefaultPath,
	}
	for _, field := range entry.InfoFields {
		if path, ok := strings.CutPrefix(field, "path="); ok && path != "" {
			server.Path = path
		}
	}
	return server, true
}

// instanceName strips the service suffix from a full mDNS name:
// "Mopidy HTTP server on pi._mopidy-http._tcp.local." becomes "Mopidy HTTP server on pi"
func instanceName(full string) string {
	name := strings.TrimSuffix(full, ".")
	if i := strings.Index(name, "._"); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, `\ `, " ")
}
