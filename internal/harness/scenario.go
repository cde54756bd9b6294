package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/decorum/internal/decorator"
	"github.com/roach88/decorum/internal/suite"
)

// Scenario describes a class run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Class ClassSpec `yaml:"class"`

	// Properties are the override properties of the run, layered under
	// the runner's own.
	Properties map[string]any `yaml:"properties,omitempty"`

	Methods []MethodSpec `yaml:"methods"`
}

// ClassSpec declares the test class.
type ClassSpec struct {
	Name     string         `yaml:"name"`
	Features map[string]any `yaml:"features,omitempty"`
}

// MethodSpec declares one test method.
type MethodSpec struct {
	Name     string         `yaml:"name"`
	Features map[string]any `yaml:"features,omitempty"`

	// Fail, when set, is the error message the method body returns.
	Fail string `yaml:"fail,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Class.Name == "" {
		return fmt.Errorf("class.name is required")
	}
	seen := make(map[string]bool, len(s.Methods))
	for i, m := range s.Methods {
		if m.Name == "" {
			return fmt.Errorf("methods[%d]: name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("methods[%d]: duplicate method %q", i, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// features turns a YAML feature map into declarations in key order.
func features(m map[string]any) []suite.Feature {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]suite.Feature, 0, len(keys))
	for _, k := range keys {
		out = append(out, suite.With(k, m[k]))
	}
	return out
}

// TestClass returns the declared class.
func (s *Scenario) TestClass() suite.Class {
	return suite.NewClass(s.Class.Name, features(s.Class.Features)...)
}

// Cases returns one Case per declared method, in declaration order.
func (s *Scenario) Cases() []Case {
	cases := make([]Case, 0, len(s.Methods))
	for _, m := range s.Methods {
		c := Case{Method: suite.NewMethod(m.Name, features(m.Features)...)}
		if m.Fail != "" {
			msg := m.Fail
			c.Body = func(context.Context, *decorator.Invocation) error {
				return errors.New(msg)
			}
		}
		cases = append(cases, c)
	}
	return cases
}

// Play runs the scenario's class with runner. Scenario properties sit
// under the runner's own properties: a key both declare keeps the runner's
// value.
func Play(ctx context.Context, runner *Runner, s *Scenario) *Report {
	if s.Properties != nil {
		clone := *runner
		outer := runner.properties
		clone.properties = func() map[string]any {
			props := maps.Clone(s.Properties)
			maps.Copy(props, outer())
			return props
		}
		runner = &clone
	}
	return runner.RunClass(ctx, s.TestClass(), s.Cases())
}
