// ABOUTME: Top-level core methods
// ABOUTME: Server version, URI schemes and API description
package mopidy

import "context"

// GetVersion returns the Mopidy server version
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	v, err := c.Call(ctx, "core.get_version", nil)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// GetURISchemes returns the URI schemes the server's backends handle
func (c *Client) GetURISchemes(ctx context.Context) ([]string, error) {
	v, err := c.Call(ctx, "core.get_uri_schemes", nil)
	if err != nil {
		return nil, err
	}
	return asStrings(v)
}

// Describe returns the server's API description keyed by method name
func (c *Client) Describe(ctx context.Context) (map[string]any, error) {
	v, err := c.Call(ctx, "core.describe", nil)
	if err != nil {
		return nil, err
	}
	return asMap(v)
}
