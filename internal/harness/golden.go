package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/boutinf/internal/ir"
)

// Snapshot converts a result into the canonical document stored in golden
// files. Traversal ids are included so a change in id assignment shows
// up as a golden diff.
func Snapshot(result *Result) ir.IRObject {
	queries := make(ir.IRArray, len(result.Queries))
	for i, q := range result.Queries {
		traversals := make(ir.IRArray, len(q.Traversals))
		for j, tr := range q.Traversals {
			obj := ir.IRObject{
				"ray":     ir.IRString(tr.Ray),
				"numbers": numbersValue(tr.Numbers),
				"state":   ir.IRString(tr.State),
			}
			if tr.ID != "" {
				obj["id"] = ir.IRString(tr.ID)
			}
			if tr.Err != "" {
				obj["error"] = ir.IRString(tr.Err)
			}
			traversals[j] = obj
		}
		queries[i] = ir.IRObject{
			"name":       ir.IRString(q.Name),
			"order":      ir.IRString(q.Order),
			"term":       ir.IRString(q.Term),
			"reference":  numbersValue(q.Reference),
			"traversals": traversals,
		}
	}
	return ir.IRObject{
		"scenario": ir.IRString(result.Scenario),
		"pass":     ir.IRBool(result.Pass),
		"queries":  queries,
	}
}

func numbersValue(ns []ir.MsgNumber) ir.IRArray {
	out := make(ir.IRArray, len(ns))
	for i, n := range ns {
		out[i] = ir.IRInt(n)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot be run. A snapshot mismatch fails
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
