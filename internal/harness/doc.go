// Package harness provides conformance testing for lazy message retrieval.
//
// The harness loads a message fixture and a list of queries, runs every
// query as a lazy traversal over each ray implementation, and checks the
// results against the expectations in the scenario and against the
// eager SQL evaluation of the same predicate.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	budget: 5s
//	messages:
//	  - {number: 1, author: bob, seen: true}
//	  - {number: 2, author: alice, attrs: {label: urgent}}
//	queries:
//	  - name: by_alice
//	    order: desc
//	    where: {equal: {author: alice}}
//	    expect:
//	      numbers: [2]
//	      state: exhausted
//
// # Expectations
//
//   - numbers: exact results in traversal order
//   - count: number of results
//   - contains: numbers that must be present
//   - excludes: numbers that must be absent
//   - state: final iterator state (exhausted, expired, failed)
//
// # Deterministic Testing
//
// Every traversal runs against a manual clock and sequential traversal
// ids. A query with expire_after moves the clock past the budget once that
// many results were pulled, so expiry is reproducible.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/board.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
