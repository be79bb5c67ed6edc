package grid

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrValidation rejects an operation before any local or remote change.
	ErrValidation = errors.New("validation failed")
	// ErrNoSession means there is no usable session to scope the operation.
	ErrNoSession = errors.New("no active session")
	// ErrScopeMismatch means the session belongs to another organization
	// than the dataset.
	ErrScopeMismatch = errors.New("session organization does not match dataset")
	// ErrStaleRow means the row no longer exists in the store, typically
	// deleted by another session.
	ErrStaleRow = errors.New("row no longer exists")

	ErrUnknownRow    = errors.New("unknown row")
	ErrUnknownColumn = errors.New("unknown column")
)

// TempKeyPrefix marks keys generated locally for rows the store has not
// confirmed yet.
const TempKeyPrefix = "tmp-"

// NewTempKey returns a fresh temporary row key.
func NewTempKey() string {
	return TempKeyPrefix + uuid.NewString()
}

// Row is one record of the dataset.
type Row struct {
	Key    string
	Temp   bool
	Values map[string]any
}

// Clone deep-copies the row so snapshots never alias live state.
func (r Row) Clone() Row {
	out := Row{Key: r.Key, Temp: r.Temp, Values: make(map[string]any, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// Value returns the stored value of a column, or nil.
func (r Row) Value(column string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[column]
}

// Scope is the tenant boundary of a dataset. Every remote call carries it.
type Scope struct {
	OrganizationID string
	ClientID       string
}

// ScopeSource supplies the organization of the current session. It returns
// an error when the session is missing or expired.
type ScopeSource interface {
	Scope() (Scope, error)
}

// StaticScope is a ScopeSource that never expires. Used by headless
// commands that already validated their session.
type StaticScope Scope

func (s StaticScope) Scope() (Scope, error) {
	if s.OrganizationID == "" {
		return Scope{}, ErrNoSession
	}
	return Scope(s), nil
}
