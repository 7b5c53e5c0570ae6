package oracle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puctzero/puctzero/game"
)

// stubState is a minimal two-legal-move, non-terminal game.State used to
// exercise Reference's prediction shape without depending on puct's test
// game or any real rules engine.
type stubState struct {
	vec []bool
}

func (s stubState) ActionSpace() int       { return 4 }
func (s stubState) Vector() []bool         { return s.vec }
func (s stubState) Hash() game.StateKey    { return game.KeyOf(s.vec) }
func (s stubState) Eq(o game.State) bool   { return false }
func (s stubState) Clone() game.State      { return s }
func (s stubState) IsTerminal() bool       { return false }
func (s stubState) GoalValue(r game.Role) float32 { return 0 }
func (s stubState) LegalMoves(r game.Role) []int32 {
	if r == game.Role1 {
		return []int32{3}
	}
	return []int32{0, 1}
}
func (s stubState) NoopMove(r game.Role) int32 {
	if r == game.Role1 {
		return 3
	}
	return -1
}
func (s stubState) Apply(jointMove [2]int32) game.State { return s }

func TestReferenceConfigIsValid(t *testing.T) {
	assert.True(t, Config{ActionSpace: 1}.IsValid())
	assert.False(t, Config{ActionSpace: 0}.IsValid())
	assert.False(t, Config{ActionSpace: -1}.IsValid())
}

func TestNewReferenceRejectsInvalidConfig(t *testing.T) {
	_, err := NewReference(Config{ActionSpace: 0})
	assert.Error(t, err)
}

func TestReferencePredictIsDeterministic(t *testing.T) {
	ref, err := NewReference(Config{ActionSpace: 4})
	require.NoError(t, err)

	s := stubState{vec: []bool{true, false, true, false}}
	first, err := ref.Predict([]game.State{s}, []game.Role{game.Role0})
	require.NoError(t, err)
	second, err := ref.Predict([]game.State{s}, []game.Role{game.Role0})
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical state/role input must produce identical predictions")
}

func TestReferencePredictDiffersAcrossStates(t *testing.T) {
	ref, err := NewReference(Config{ActionSpace: 4})
	require.NoError(t, err)

	a := stubState{vec: []bool{true, false, true, false}}
	b := stubState{vec: []bool{false, false, false, true}}

	predA, err := ref.Predict([]game.State{a}, []game.Role{game.Role0})
	require.NoError(t, err)
	predB, err := ref.Predict([]game.State{b}, []game.Role{game.Role0})
	require.NoError(t, err)

	assert.NotEqual(t, predA[0], predB[0])
}

func TestReferencePredictPolicyIsNormalised(t *testing.T) {
	ref, err := NewReference(Config{ActionSpace: 4})
	require.NoError(t, err)

	s := stubState{vec: []bool{true, true, false, false}}
	preds, err := ref.Predict([]game.State{s}, []game.Role{game.Role0})
	require.NoError(t, err)

	var sum float32
	for _, p := range preds[0].Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-4)

	// only legal moves (0 and 1 for Role0) may carry weight.
	assert.Zero(t, preds[0].Policy[2])
	assert.Zero(t, preds[0].Policy[3])
}

func TestReferenceValueRespectsBias(t *testing.T) {
	ref, err := NewReference(Config{ActionSpace: 4, Bias: 1})
	require.NoError(t, err)

	s := stubState{vec: []bool{true, false, false, true}}
	preds, err := ref.Predict([]game.State{s}, []game.Role{game.Role0})
	require.NoError(t, err)

	assert.Equal(t, float32(1), preds[0].Value[0])
	assert.Equal(t, float32(0), preds[0].Value[1])
}

func TestReferenceTrainSetsGeneration(t *testing.T) {
	ref, err := NewReference(Config{ActionSpace: 4})
	require.NoError(t, err)
	assert.Equal(t, "reference-0", ref.Generation())

	require.NoError(t, ref.Train(nil, "gen-7"))
	assert.Equal(t, "gen-7", ref.Generation())
}

func TestReferenceSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	ref, err := NewReference(Config{ActionSpace: 6, Bias: 0.3})
	require.NoError(t, err)
	require.NoError(t, ref.Train(nil, "gen-3"))
	require.NoError(t, ref.Save(filepath.Join(dir, "net")))

	loaded, err := NewReference(Config{ActionSpace: 1})
	require.NoError(t, err)
	require.NoError(t, loaded.Load(filepath.Join(dir, "net")))

	assert.Equal(t, "gen-3", loaded.Generation())
	assert.Equal(t, ref.conf, loaded.conf)
}
