package journal

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/decorum/internal/engine"
)

// Observer records every dispatch it sees. Write failures are logged, never
// returned: a broken journal must not change the outcome of a test.
type Observer struct {
	journal *Journal
	logger  *slog.Logger
}

var (
	_ engine.Observer  = (*Observer)(nil)
	_ engine.SeqSource = (*Journal)(nil)
)

// NewObserver wraps j. A nil logger discards.
func NewObserver(j *Journal, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Observer{journal: j, logger: logger}
}

// Observe implements engine.Observer.
func (o *Observer) Observe(ctx context.Context, d engine.Dispatch) {
	if err := o.journal.Record(ctx, EntryOf(d)); err != nil {
		o.logger.Warn("journal write failed", "seq", d.Seq, "error", err)
	}
}
