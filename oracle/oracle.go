// Package oracle defines the contract between the PUCT evaluator and the
// neural policy/value network that guides it. The network itself is an
// external collaborator; this package only fixes its shape.
package oracle

import "github.com/puctzero/puctzero/game"

// Prediction is one oracle answer: a policy distribution over the whole
// action space (indexed by move, not by child order) and a per-role
// value estimate in [0, 1].
type Prediction struct {
	Policy []float32
	Value  [2]float32
}

// Inferencer answers batched policy/value queries. states and leadRoles
// are parallel slices; the returned predictions are in the same order.
type Inferencer interface {
	Predict(states []game.State, leadRoles []game.Role) ([]Prediction, error)
}

// TrainingExample is one fitting example for a Trainer: a state, the
// visit-count policy recorded for it, and the final per-role score used
// as the value target.
type TrainingExample struct {
	State  []bool
	Policy map[int32]float32
	Value  [2]float32
}

// Trainer fits a network from a batch of examples and persists it under
// the given generation identifier.
type Trainer interface {
	Train(examples []TrainingExample, generation string) error
	Save(dir string) error
	Load(dir string) error
}
