package api

import "strings"

// MediaURL resolves a media reference returned by the API. The backend sends
// relative paths; absolute URLs pass through untouched.
func (c *Client) MediaURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.backendURL + path
}
