package engine

// Phase is one of the four lifecycle moments a decorator can hook.
type Phase int

const (
	PhaseBeforeAll Phase = iota + 1
	PhaseBeforeTest
	PhaseAfterTest
	PhaseAfterAll
)

var phaseNames = map[Phase]string{
	PhaseBeforeAll:  "before-all",
	PhaseBeforeTest: "before-test",
	PhaseAfterTest:  "after-test",
	PhaseAfterAll:   "after-all",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePhase is the inverse of String.
func ParsePhase(s string) (Phase, bool) {
	for p, name := range phaseNames {
		if name == s {
			return p, true
		}
	}
	return 0, false
}

// IsAfter reports whether the phase is a teardown phase.
func (p Phase) IsAfter() bool {
	return p == PhaseAfterTest || p == PhaseAfterAll
}

// IsClass reports whether the phase dispatches to class decorators.
func (p Phase) IsClass() bool {
	return p == PhaseBeforeAll || p == PhaseAfterAll
}
