package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDemoScenarios runs the shared scenarios end to end and pins their
// results in golden files.
func TestDemoScenarios(t *testing.T) {
	tests := []struct {
		name         string
		scenarioPath string
	}{
		{name: "board", scenarioPath: "../../testdata/scenarios/board.yaml"},
		{name: "expiry", scenarioPath: "../../testdata/scenarios/expiry.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := LoadScenario(tt.scenarioPath)
			require.NoError(t, err, "failed to load scenario from %s", tt.scenarioPath)
			assert.Equal(t, tt.name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}
