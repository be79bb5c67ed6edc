package grid

import (
	"context"
	"fmt"
)

// Command is a remote side effect produced by a controller transition.
// Commands are plain values; Execute runs them against a Store and the
// Result goes back through Controller.Apply.
type Command interface {
	CommandID() uint64
}

// CreateRows inserts rows that currently hold temporary keys.
type CreateRows struct {
	ID    uint64
	Scope Scope
	Rows  []Row
	// Entry is the undo entry covering the batch, 0 for corrective creates.
	Entry uint64
}

// UpdateCell persists one cell at a given local version.
type UpdateCell struct {
	ID      uint64
	Scope   Scope
	RowKey  string
	Column  string
	Value   any
	Version uint64
}

// DeleteRows removes persisted rows.
type DeleteRows struct {
	ID    uint64
	Scope Scope
	Keys  []string
	// Entry is the undo entry of the deletion, 0 for corrective deletes.
	Entry uint64
}

func (c CreateRows) CommandID() uint64 { return c.ID }
func (c UpdateCell) CommandID() uint64 { return c.ID }
func (c DeleteRows) CommandID() uint64 { return c.ID }

// Result is the completion of one command.
type Result struct {
	Command Command
	// Rows holds the persisted rows of a CreateRows, in command order.
	Rows []Row
	Err  error
}

// Store is the persistence collaborator. Every call is scoped by
// organization; implementations return an error wrapping ErrStaleRow when
// the addressed row does not exist.
type Store interface {
	CreateRows(ctx context.Context, scope Scope, rows []Row) ([]Row, error)
	UpdateRow(ctx context.Context, scope Scope, key string, values map[string]any) (Row, error)
	DeleteRows(ctx context.Context, scope Scope, keys []string) error
}

// Execute runs a command against the store.
func Execute(ctx context.Context, store Store, cmd Command) Result {
	res := Result{Command: cmd}
	switch c := cmd.(type) {
	case CreateRows:
		rows, err := store.CreateRows(ctx, c.Scope, c.Rows)
		if err == nil && len(rows) != len(c.Rows) {
			err = fmt.Errorf("store returned %d of %d created rows", len(rows), len(c.Rows))
		}
		res.Rows, res.Err = rows, err
	case UpdateCell:
		row, err := store.UpdateRow(ctx, c.Scope, c.RowKey, map[string]any{c.Column: c.Value})
		if err == nil {
			res.Rows = []Row{row}
		}
		res.Err = err
	case DeleteRows:
		res.Err = store.DeleteRows(ctx, c.Scope, c.Keys)
	default:
		res.Err = fmt.Errorf("unknown command %T", cmd)
	}
	return res
}
