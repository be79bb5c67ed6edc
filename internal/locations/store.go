package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gravitrone/clientdesk/internal/api"
	"github.com/gravitrone/clientdesk/internal/grid"
)

// Backend is the subset of the REST client the store needs.
type Backend interface {
	ListLocations(ctx context.Context, orgID, clientID string) ([]api.Record, error)
	CreateLocations(ctx context.Context, orgID string, records []api.Record) ([]api.Record, error)
	UpdateLocation(ctx context.Context, orgID, id string, values api.Record) (api.Record, error)
	DeleteLocations(ctx context.Context, orgID string, ids []string) error
}

// Store persists grid rows as location records. It implements grid.Store.
type Store struct {
	backend Backend
	columns []grid.Column
}

// NewStore creates a store over backend for the given columns.
func NewStore(backend Backend, columns []grid.Column) *Store {
	return &Store{backend: backend, columns: columns}
}

// Load reads every location of the scope's client.
func (s *Store) Load(ctx context.Context, scope grid.Scope) ([]grid.Row, error) {
	recs, err := s.backend.ListLocations(ctx, scope.OrganizationID, scope.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	rows := make([]grid.Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, s.RecordRow(rec))
	}
	log.Debug().Str("org", scope.OrganizationID).Str("client", scope.ClientID).Int("rows", len(rows)).Msg("locations loaded")
	return rows, nil
}

func (s *Store) CreateRows(ctx context.Context, scope grid.Scope, rows []grid.Row) ([]grid.Row, error) {
	recs := make([]api.Record, len(rows))
	for i, r := range rows {
		rec := s.toRecord(r.Values, true)
		if scope.ClientID != "" {
			rec["client_id"] = scope.ClientID
		}
		recs[i] = rec
	}
	saved, err := s.backend.CreateLocations(ctx, scope.OrganizationID, recs)
	if err != nil {
		return nil, err
	}
	out := make([]grid.Row, len(saved))
	for i, rec := range saved {
		out[i] = s.RecordRow(rec)
	}
	return out, nil
}

func (s *Store) UpdateRow(ctx context.Context, scope grid.Scope, key string, values map[string]any) (grid.Row, error) {
	rec, err := s.backend.UpdateLocation(ctx, scope.OrganizationID, key, s.toRecord(values, false))
	if errors.Is(err, api.ErrNotFound) {
		return grid.Row{}, fmt.Errorf("%w: %w", grid.ErrStaleRow, err)
	}
	if err != nil {
		return grid.Row{}, err
	}
	return s.RecordRow(rec), nil
}

func (s *Store) DeleteRows(ctx context.Context, scope grid.Scope, keys []string) error {
	err := s.backend.DeleteLocations(ctx, scope.OrganizationID, keys)
	if errors.Is(err, api.ErrNotFound) {
		// Already gone.
		return nil
	}
	return err
}

// RecordRow keeps the catalog columns of a record, with numbers as float64.
func (s *Store) RecordRow(rec api.Record) grid.Row {
	row := grid.Row{Key: rec.ID(), Values: make(map[string]any, len(s.columns))}
	for _, col := range s.columns {
		v, ok := rec[col.Key]
		if !ok || v == nil {
			continue
		}
		row.Values[col.Key] = normalize(v, col)
	}
	return row
}

// toRecord converts row values to a record body. Creates omit empty
// fields; updates send null to clear them.
func (s *Store) toRecord(values map[string]any, omitNil bool) api.Record {
	rec := make(api.Record, len(values))
	for _, col := range s.columns {
		v, ok := values[col.Key]
		if !ok || (v == nil && omitNil) {
			continue
		}
		rec[col.Key] = v
	}
	return rec
}

func normalize(v any, col grid.Column) any {
	switch col.Type {
	case grid.TypeNumber, grid.TypeCurrency:
		switch n := v.(type) {
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
		return v
	}
	switch n := v.(type) {
	case json.Number:
		return n.String()
	}
	return v
}
