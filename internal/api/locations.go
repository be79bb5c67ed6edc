package api

import (
	"context"
	"errors"
	"fmt"
)

const locationsPath = "/rest/v1/locations"

// ListLocations returns the locations of one client, ordered by location
// number. An empty clientID lists every location of the organization.
func (c *Client) ListLocations(ctx context.Context, orgID, clientID string) ([]Record, error) {
	if orgID == "" {
		return nil, errors.New("organization id required")
	}
	params := QueryParams{
		"select":          "*",
		"organization_id": eq(orgID),
		"order":           "location_number.asc.nullslast,created_at.asc",
	}
	if clientID != "" {
		params["client_id"] = eq(clientID)
	}
	data, err := c.get(ctx, buildQuery(locationsPath, params))
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}

// CreateLocations inserts records in one request and returns them as
// stored, in request order. organization_id is forced on every record.
func (c *Client) CreateLocations(ctx context.Context, orgID string, records []Record) ([]Record, error) {
	if orgID == "" {
		return nil, errors.New("organization id required")
	}
	if len(records) == 0 {
		return nil, nil
	}
	body := make([]Record, len(records))
	for i, r := range records {
		rec := make(Record, len(r)+1)
		for k, v := range r {
			rec[k] = v
		}
		rec["organization_id"] = orgID
		body[i] = rec
	}
	data, err := c.post(ctx, locationsPath, body)
	if err != nil {
		return nil, err
	}
	return decodeRecords(data)
}

// UpdateLocation patches one location. ErrNotFound means no row matched
// the id inside the organization.
func (c *Client) UpdateLocation(ctx context.Context, orgID, id string, values Record) (Record, error) {
	if orgID == "" {
		return nil, errors.New("organization id required")
	}
	path := buildQuery(locationsPath, QueryParams{
		"id":              eq(id),
		"organization_id": eq(orgID),
	})
	data, err := c.patch(ctx, path, values)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: location %s", ErrNotFound, id)
	}
	return rows[0], nil
}

// DeleteLocations removes locations by id inside the organization.
func (c *Client) DeleteLocations(ctx context.Context, orgID string, ids []string) error {
	if orgID == "" {
		return errors.New("organization id required")
	}
	if len(ids) == 0 {
		return nil
	}
	path := buildQuery(locationsPath, QueryParams{
		"id":              in(ids),
		"organization_id": eq(orgID),
	})
	_, err := c.del(ctx, path)
	return err
}
