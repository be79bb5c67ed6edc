package api

import (
	"context"
	"errors"
)

// ListClients returns the clients of an organization by name.
func (c *Client) ListClients(ctx context.Context, orgID string) ([]InsuredClient, error) {
	if orgID == "" {
		return nil, errors.New("organization id required")
	}
	data, err := c.get(ctx, buildQuery("/rest/v1/clients", QueryParams{
		"select":          "id,organization_id,name,status,created_at",
		"organization_id": eq(orgID),
		"order":           "name.asc",
	}))
	if err != nil {
		return nil, err
	}
	return decodeList[InsuredClient](data)
}
