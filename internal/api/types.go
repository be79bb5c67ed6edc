package api

import (
	"encoding/json"
	"time"
)

// QueryParams holds raw query parameters, already in PostgREST filter
// syntax where needed.
type QueryParams map[string]string

// Record is one table row as returned by the REST endpoint.
type Record map[string]any

// ID returns the row id, or "".
func (r Record) ID() string {
	switch id := r["id"].(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	}
	return ""
}

// --- Clients ---

// InsuredClient is a client of an organization whose locations are insured.
type InsuredClient struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// --- Auth ---

// User is the authenticated identity inside a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token grant returned by the auth endpoint.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Expiry returns when the access token stops being valid.
func (s Session) Expiry(now time.Time) time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	return now.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// Profile is the user's row in the profiles table. It carries the
// organization that scopes every data call.
type Profile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}
