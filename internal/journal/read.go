package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/decorum/internal/engine"
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Class     string
	ContextID string
	Phase     engine.Phase
	Failed    bool // only failed dispatches
}

// List returns recorded dispatches ordered by seq ASC. Returns an empty
// slice, not nil, when nothing matches.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Class != "" {
		where = append(where, "class = ?")
		args = append(args, f.Class)
	}
	if f.ContextID != "" {
		where = append(where, "context_id = ?")
		args = append(args, f.ContextID)
	}
	if f.Phase != 0 {
		where = append(where, "phase = ?")
		args = append(args, f.Phase.String())
	}
	if f.Failed {
		where = append(where, "error IS NOT NULL")
	}

	query := `
		SELECT seq, context_id, phase, class, method, decorator, priority, error
		FROM dispatches`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY seq ASC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e       Entry
		phase   string
		errText sql.NullString
	)
	if err := rows.Scan(&e.Seq, &e.ContextID, &phase, &e.Class, &e.Method, &e.Decorator, &e.Priority, &errText); err != nil {
		return Entry{}, fmt.Errorf("scan dispatch: %w", err)
	}
	p, ok := engine.ParsePhase(phase)
	if !ok {
		return Entry{}, fmt.Errorf("scan dispatch %d: unknown phase %q", e.Seq, phase)
	}
	e.Phase = p
	e.Error = errText.String
	return e, nil
}

// ContextRecord is a recorded execution context.
type ContextRecord struct {
	ID         string
	Class      string
	Properties map[string]any
	Units      []UnitRecord
}

// UnitRecord is a configuration unit loaded for a context.
type UnitRecord struct {
	Name        string
	Named       bool
	Provider    string
	Source      string
	Fingerprint string
}

// Context returns a recorded context with its units in load order.
// ok is false if the id is unknown.
func (j *Journal) Context(ctx context.Context, id string) (rec ContextRecord, ok bool, err error) {
	var props string
	err = j.db.QueryRowContext(ctx, `
		SELECT id, class, properties FROM contexts WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Class, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return ContextRecord{}, false, nil
	}
	if err != nil {
		return ContextRecord{}, false, fmt.Errorf("query context %s: %w", id, err)
	}
	if rec.Properties, err = unmarshalProperties(props); err != nil {
		return ContextRecord{}, false, fmt.Errorf("context %s: %w", id, err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT name, provider, source, fingerprint
		FROM units
		WHERE context_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return ContextRecord{}, false, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	rec.Units = []UnitRecord{}
	for rows.Next() {
		var (
			u    UnitRecord
			name sql.NullString
		)
		if err := rows.Scan(&name, &u.Provider, &u.Source, &u.Fingerprint); err != nil {
			return ContextRecord{}, false, fmt.Errorf("scan unit: %w", err)
		}
		u.Name, u.Named = name.String, name.Valid
		rec.Units = append(rec.Units, u)
	}
	if err := rows.Err(); err != nil {
		return ContextRecord{}, false, fmt.Errorf("iterate units: %w", err)
	}
	return rec, true, nil
}
