package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migrations run in order against databases whose user_version is below
// their version. The base schema in schema.sql is version 0.
var migrations = []struct {
	version int
	stmt    string
}{
	{1, `CREATE INDEX IF NOT EXISTS idx_dispatches_class ON dispatches(class, seq)`},
}

var currentSchemaVersion = migrations[len(migrations)-1].version

// connParams are go-sqlite3 DSN parameters applied to every connection.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Journal records lifecycle dispatches in SQLite.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal database at path and brings its schema
// up to date. Opening an existing journal again is harmless.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// One writer at a time; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// LastSeq returns the highest recorded dispatch sequence, or 0. It makes a
// Journal an engine.SeqSource for engine.ResumeClock.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := j.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM dispatches").Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	version, err := j.schemaVersion()
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := j.db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := j.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			return fmt.Errorf("set user_version %d: %w", m.version, err)
		}
	}
	return nil
}

func (j *Journal) schemaVersion() (int, error) {
	var version int
	err := j.db.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}
