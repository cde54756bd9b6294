package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/decorum/internal/engine"
)

// Recorder is an engine.Observer that keeps every dispatch in memory.
type Recorder struct {
	mu         sync.Mutex
	dispatches []engine.Dispatch
}

// Observe implements engine.Observer.
func (r *Recorder) Observe(_ context.Context, d engine.Dispatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatches = append(r.dispatches, d)
}

// Dispatches returns a copy of the recorded dispatches.
func (r *Recorder) Dispatches() []engine.Dispatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]engine.Dispatch(nil), r.dispatches...)
}

// TraceEvent is the golden-file form of a dispatch. Context ids are left
// out so traces stay stable across runs.
type TraceEvent struct {
	Seq       int64  `json:"seq"`
	Phase     string `json:"phase"`
	Target    string `json:"target"`
	Decorator string `json:"decorator"`
	Priority  int    `json:"priority"`
	Error     string `json:"error,omitempty"`
}

// CaseSnapshot is the golden-file form of a case result.
type CaseSnapshot struct {
	Method string `json:"method"`
	Error  string `json:"error,omitempty"`
}

// TraceSnapshot captures a scenario run for golden comparison.
type TraceSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Trace        []TraceEvent   `json:"trace"`
	Cases        []CaseSnapshot `json:"cases"`
	ClassError   string         `json:"class_error,omitempty"`
}

// NewSnapshot builds a snapshot from recorded dispatches and a report.
func NewSnapshot(name string, dispatches []engine.Dispatch, report *Report) TraceSnapshot {
	s := TraceSnapshot{
		ScenarioName: name,
		Trace:        make([]TraceEvent, 0, len(dispatches)),
		Cases:        []CaseSnapshot{},
	}
	for _, d := range dispatches {
		target := d.Class
		if d.Method != "" {
			target += "." + d.Method
		}
		ev := TraceEvent{
			Seq:       d.Seq,
			Phase:     d.Phase.String(),
			Target:    target,
			Decorator: d.Decorator,
			Priority:  d.Priority,
		}
		if d.Err != nil {
			ev.Error = d.Err.Error()
		}
		s.Trace = append(s.Trace, ev)
	}
	if report != nil {
		for _, c := range report.Cases {
			cs := CaseSnapshot{Method: c.Method}
			if c.Err != nil {
				cs.Error = c.Err.Error()
			}
			s.Cases = append(s.Cases, cs)
		}
		if report.Err != nil {
			s.ClassError = report.Err.Error()
		}
	}
	return s
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
func (s TraceSnapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// AssertGolden compares the snapshot against
// testdata/golden/{ScenarioName}.golden.
func AssertGolden(t *testing.T, s TraceSnapshot) {
	t.Helper()

	data, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.ScenarioName, data)
}

// RunWithGolden loads a scenario, plays it with a runner built by newRunner
// around a fresh Recorder, and compares the trace against its golden file.
func RunWithGolden(t *testing.T, path string, newRunner func(*Recorder) *Runner) *Report {
	t.Helper()

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}

	rec := &Recorder{}
	report := Play(context.Background(), newRunner(rec), scenario)
	AssertGolden(t, NewSnapshot(scenario.Name, rec.Dispatches(), report))
	return report
}
