package api

import "time"

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:54321"

// NewDefaultClient builds a client pointed at the default backend URL.
func NewDefaultClient(anonKey string, timeout ...time.Duration) *Client {
	return NewClient(DefaultBaseURL, anonKey, timeout...)
}
