package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/decorum/internal/engine"
	"github.com/roach88/decorum/internal/execution"
)

// Entry is one recorded dispatch.
type Entry struct {
	Seq       int64
	ContextID string
	Phase     engine.Phase
	Class     string
	Method    string
	Decorator string
	Priority  int

	// Error is the decorator's error text; empty on success.
	Error string
}

// Failed reports whether the decorator returned an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// EntryOf converts an engine dispatch.
func EntryOf(d engine.Dispatch) Entry {
	e := Entry{
		Seq:       d.Seq,
		ContextID: d.ContextID,
		Phase:     d.Phase,
		Class:     d.Class,
		Method:    d.Method,
		Decorator: d.Decorator,
		Priority:  d.Priority,
	}
	if d.Err != nil {
		e.Error = d.Err.Error()
	}
	return e
}

// Record inserts a dispatch. A seq already present is ignored.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	var errText sql.NullString
	if e.Error != "" {
		errText = sql.NullString{String: e.Error, Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO dispatches
		(seq, context_id, phase, class, method, decorator, priority, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		e.Seq,
		e.ContextID,
		e.Phase.String(),
		e.Class,
		e.Method,
		e.Decorator,
		e.Priority,
		errText,
	)
	if err != nil {
		return fmt.Errorf("record dispatch %d: %w", e.Seq, err)
	}
	return nil
}

// RecordContext stores an execution context and the units it loaded, in
// one transaction. Recording the same context again is a no-op.
func (j *Journal) RecordContext(ctx context.Context, ec *execution.Context) error {
	props, err := marshalProperties(ec.Properties())
	if err != nil {
		return fmt.Errorf("record context %s: %w", ec.ID(), err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO contexts (id, class, properties)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, ec.ID(), ec.Class().Name, props)
	if err != nil {
		return fmt.Errorf("record context %s: %w", ec.ID(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	for i, d := range ec.Descriptors() {
		var name sql.NullString
		if n, ok := d.UnitName(); ok {
			name = sql.NullString{String: n, Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO units (context_id, position, name, provider, source, fingerprint)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ec.ID(), i, name, d.Provider(), d.Source(), d.Fingerprint())
		if err != nil {
			return fmt.Errorf("record unit %d of context %s: %w", i, ec.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
