package api

import (
	"context"
	"fmt"
	"net/http"
)

// SignIn exchanges email and password for a session. The client keeps
// using the new access token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	data, err := c.post(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return c.acceptSession(data)
}

// Refresh trades a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	data, err := c.post(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	return c.acceptSession(data)
}

func (c *Client) acceptSession(data []byte) (*Session, error) {
	s, err := decodeOne[Session](data)
	if err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("decode response: missing access_token")
	}
	c.SetAccessToken(s.AccessToken)
	return s, nil
}

// SignOut revokes the current session and forgets its token.
func (c *Client) SignOut(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
	c.SetAccessToken("")
	return err
}

// GetProfile reads the profile row of a user.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	data, err := c.get(ctx, buildQuery("/rest/v1/profiles", QueryParams{
		"select": "id,email,full_name,organization_id,role",
		"id":     eq(userID),
	}))
	if err != nil {
		return nil, err
	}
	profiles, err := decodeList[Profile](data)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	return &profiles[0], nil
}
