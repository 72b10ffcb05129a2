package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/boutinf/internal/inf"
	"github.com/roach88/boutinf/internal/queryir"
)

// Scenario defines a conformance test scenario: a fixture and the
// queries to run over it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Budget is the latency budget of every traversal.
	// Zero means inf.DefaultBudget.
	Budget time.Duration `yaml:"budget,omitempty"`

	// Messages is the fixture every query runs against.
	Messages []FixtureMessage `yaml:"messages"`

	// Queries are run in order, each against every ray.
	Queries []Query `yaml:"queries"`
}

// Query is one traversal to run and check.
type Query struct {
	// Name identifies the query in results and errors.
	Name string `yaml:"name"`

	// Order is "desc" (default) or "asc".
	Order string `yaml:"order,omitempty"`

	// Limit stops pulling after this many results; 0 means all.
	Limit int `yaml:"limit,omitempty"`

	// ExpireAfter advances the clock past the budget once this many
	// results were pulled; 0 never expires.
	ExpireAfter int `yaml:"expire_after,omitempty"`

	// Where is the predicate document.
	Where yaml.Node `yaml:"where"`

	// Expect holds the checks applied to every traversal.
	Expect Expect `yaml:"expect"`
}

// Expect lists the checks for a query. Unset fields are not checked.
type Expect struct {
	Numbers  []int64 `yaml:"numbers,omitempty"`
	Count    *int    `yaml:"count,omitempty"`
	Contains []int64 `yaml:"contains,omitempty"`
	Excludes []int64 `yaml:"excludes,omitempty"`
	State    string  `yaml:"state,omitempty"`
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

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "query:" vs "queries:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Budget < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	names := make(map[string]bool)
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("query %d: name is required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("query %d: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true

		if _, err := inf.ParseOrder(q.Order); err != nil {
			return fmt.Errorf("query %q: %w", q.Name, err)
		}
		if q.Limit < 0 || q.ExpireAfter < 0 {
			return fmt.Errorf("query %q: limit and expire_after must not be negative", q.Name)
		}
		if q.Where.Kind == 0 {
			return fmt.Errorf("query %q: where is required", q.Name)
		}
		if _, err := q.Predicate(); err != nil {
			return fmt.Errorf("query %q: %w", q.Name, err)
		}
		switch q.Expect.State {
		case "", StateExhausted, StateExpired, StateFailed:
		default:
			return fmt.Errorf("query %q: unknown expected state %q", q.Name, q.Expect.State)
		}
	}

	for i, m := range s.Messages {
		if _, err := m.Message(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	return nil
}

// Predicate parses the where document of the query.
func (q Query) Predicate() (queryir.Predicate, error) {
	return queryir.FromNode(&q.Where)
}
