package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puctzero/puctzero/wire"
)

// TestGenerationRoundTrip exercises R2: a written generation file must
// read back with every sample field preserved.
func TestGenerationRoundTrip(t *testing.T) {
	dir := t.TempDir()

	gen := wire.Generation{
		Game:                 "checkers",
		WithPolicyGeneration: "p-1",
		WithScoreGeneration:  "s-1",
		NumSamples:           2,
		Samples: []wire.Sample{
			{State: []bool{true, false}, Policy: map[int32]float32{0: 1}, FinalScore: [2]float32{1, 0}, Depth: 1, GameLength: 5, LeadRoleIndex: 0},
			{State: []bool{false, true}, Policy: map[int32]float32{1: 1}, FinalScore: [2]float32{1, 0}, Depth: 2, GameLength: 5, LeadRoleIndex: 1},
		},
	}

	require.NoError(t, WriteGeneration(dir, 3, gen))

	got, err := ReadGeneration(dir, 3)
	require.NoError(t, err)
	assert.Equal(t, gen, got)
}

func TestWriteGenerationRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	gen := wire.Generation{Game: "checkers"}

	require.NoError(t, WriteGeneration(dir, 1, gen))
	err := WriteGeneration(dir, 1, gen)
	assert.Error(t, err)
}

func TestGenerationPathLayout(t *testing.T) {
	assert.Equal(t, filepath.Join("store", "gendata_0.json"), GenerationPath("store", 0))
}
