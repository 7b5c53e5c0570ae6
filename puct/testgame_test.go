package puct

import (
	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/oracle"
)

// binaryTreeState is a minimal two-role State used to exercise the PUCT
// core without any real game rules: Role0 is always lead and picks a
// sequence of 0/1 moves down to maxDepth; Role1's only legal move is
// always its own noop, satisfying the two-role convention everywhere.
type binaryTreeState struct {
	path     []int32
	maxDepth int
}

const (
	moveZero     int32 = 0
	moveOne      int32 = 1
	otherNoopIdx int32 = 2
)

func newBinaryTreeState(maxDepth int) *binaryTreeState {
	return &binaryTreeState{maxDepth: maxDepth}
}

func (s *binaryTreeState) ActionSpace() int { return 3 }

func (s *binaryTreeState) Vector() []bool {
	v := make([]bool, s.maxDepth)
	for i, mv := range s.path {
		v[i] = mv == moveOne
	}
	return v
}

func (s *binaryTreeState) Hash() game.StateKey { return game.KeyOf(s.Vector()) }

func (s *binaryTreeState) Eq(other game.State) bool {
	o, ok := other.(*binaryTreeState)
	if !ok || len(o.path) != len(s.path) {
		return false
	}
	for i := range s.path {
		if s.path[i] != o.path[i] {
			return false
		}
	}
	return true
}

func (s *binaryTreeState) Clone() game.State {
	return &binaryTreeState{path: append([]int32(nil), s.path...), maxDepth: s.maxDepth}
}

func (s *binaryTreeState) IsTerminal() bool { return len(s.path) >= s.maxDepth }

// GoalValue rewards Role0 for ending with a strict majority of 1 moves;
// zero-sum against Role1.
func (s *binaryTreeState) GoalValue(role game.Role) float32 {
	var ones int
	for _, mv := range s.path {
		if mv == moveOne {
			ones++
		}
	}
	r0 := float32(50)
	switch {
	case ones*2 > len(s.path):
		r0 = 100
	case ones*2 < len(s.path):
		r0 = 0
	}
	if role == game.Role0 {
		return r0
	}
	return 100 - r0
}

func (s *binaryTreeState) LegalMoves(role game.Role) []int32 {
	if role == game.Role1 {
		return []int32{otherNoopIdx}
	}
	if s.IsTerminal() {
		return nil
	}
	return []int32{moveZero, moveOne}
}

func (s *binaryTreeState) NoopMove(role game.Role) int32 {
	if role == game.Role1 {
		return otherNoopIdx
	}
	return -1
}

func (s *binaryTreeState) Apply(jointMove [2]int32) game.State {
	next := s.Clone().(*binaryTreeState)
	next.path = append(next.path, jointMove[game.Role0])
	return next
}

// uniformOracle always returns equal policy weight over the legal moves
// and a fixed value, a deterministic stand-in for the neural network.
type uniformOracle struct {
	value [2]float32
}

var _ oracle.Inferencer = uniformOracle{}

func (o uniformOracle) Predict(states []game.State, leadRoles []game.Role) ([]oracle.Prediction, error) {
	out := make([]oracle.Prediction, len(states))
	for i, s := range states {
		policy := make([]float32, s.ActionSpace())
		legal := s.LegalMoves(leadRoles[i])
		for _, mv := range legal {
			policy[mv] = 1.0 / float32(len(legal))
		}
		out[i] = oracle.Prediction{Policy: policy, Value: o.value}
	}
	return out, nil
}

// recordingOracle wraps another Inferencer and records the size of every
// batch it is asked to predict, so a test can confirm the caller folded
// several nodes into one Predict call rather than one call per node.
type recordingOracle struct {
	inner     oracle.Inferencer
	batchSize []int
}

var _ oracle.Inferencer = (*recordingOracle)(nil)

func (o *recordingOracle) Predict(states []game.State, leadRoles []game.Role) ([]oracle.Prediction, error) {
	o.batchSize = append(o.batchSize, len(states))
	return o.inner.Predict(states, leadRoles)
}

// biasedOracle favours moveOne over moveZero in its policy, and reports a
// value proportional to the fraction of 1s played so far, so searches
// have a genuine preference to exercise choose_top_visits against.
type biasedOracle struct{}

var _ oracle.Inferencer = biasedOracle{}

func (o biasedOracle) Predict(states []game.State, leadRoles []game.Role) ([]oracle.Prediction, error) {
	out := make([]oracle.Prediction, len(states))
	for i, s := range states {
		bs := s.(*binaryTreeState)
		policy := make([]float32, s.ActionSpace())
		if !bs.IsTerminal() {
			policy[moveZero] = 0.2
			policy[moveOne] = 0.8
		}

		var ones int
		for _, mv := range bs.path {
			if mv == moveOne {
				ones++
			}
		}
		v0 := float32(0.5)
		if len(bs.path) > 0 {
			v0 = float32(ones) / float32(len(bs.path))
		}
		out[i] = oracle.Prediction{Policy: policy, Value: [2]float32{v0, 1 - v0}}
	}
	return out, nil
}
