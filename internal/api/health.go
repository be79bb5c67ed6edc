package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// Health calls the auth health endpoint and returns the service name.
func (c *Client) Health(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/auth/v1/health")
	if err != nil {
		return "", err
	}

	var payload struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if payload.Version != "" {
		return payload.Name + " " + payload.Version, nil
	}
	return payload.Name, nil
}
