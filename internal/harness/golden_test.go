package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutinf/internal/ir"
)

func TestSnapshot_Canonical(t *testing.T) {
	result := NewResult("snap")
	result.Queries = []QueryResult{{
		Name:      "q",
		Order:     "asc",
		Term:      "(never)",
		Reference: []ir.MsgNumber{},
		Traversals: []Traversal{
			{Ray: RayMemory, ID: "memory-1", State: StateFailed, Err: "boom"},
		},
	}}

	data, err := ir.MarshalCanonical(Snapshot(result))
	require.NoError(t, err)
	assert.Equal(t,
		`{"pass":true,"queries":[{"name":"q","order":"asc","reference":[],"term":"(never)",`+
			`"traversals":[{"error":"boom","id":"memory-1","numbers":[],"ray":"memory","state":"failed"}]}],"scenario":"snap"}`,
		string(data))
}
