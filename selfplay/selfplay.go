// Package selfplay runs one game to completion using a PUCT evaluator
// against itself, producing training samples. It is the direct
// successor of the teacher's Arena.Play: a stateful driver that records
// one example per move, then backfills every example's value once the
// winner (or draw) is known — same shape, generalised to the two-role
// score vector this system's games use instead of a single winner
// colour.
package selfplay

import (
	"time"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/oracle"
	"github.com/puctzero/puctzero/puct"
	"github.com/puctzero/puctzero/wire"
)

// Play drives state to a terminal position, searching with conf via
// inferencer at every move, and returns one Sample per move made.
// perMoveBudget bounds how long each move's search is allowed to run.
func Play(state game.State, conf puct.Config, inferencer oracle.Inferencer, perMoveBudget time.Duration) ([]wire.Sample, error) {
	eval, err := puct.New(conf, inferencer)
	if err != nil {
		return nil, errors.Wrap(err, "selfplay: build evaluator")
	}

	var samples []wire.Sample
	depth := 0

	for !state.IsTerminal() {
		lead, err := game.LeadRole(state)
		if err != nil {
			return nil, errors.Wrap(err, "selfplay: lead role")
		}

		if err := eval.EstablishRoot(state); err != nil {
			return nil, errors.Wrap(err, "selfplay: establish root")
		}

		deadline := time.Now().Add(perMoveBudget)
		move, dist, err := eval.Search(lead, depth, deadline)
		if err != nil {
			return nil, errors.Wrap(err, "selfplay: search")
		}

		samples = append(samples, wire.Sample{
			State:         append([]bool(nil), state.Vector()...),
			Policy:        dist,
			Depth:         depth,
			LeadRoleIndex: int8(lead),
		})

		var jointMove [2]int32
		jointMove[lead] = move
		jointMove[game.OtherRole(lead)] = state.NoopMove(game.OtherRole(lead))

		state = state.Apply(jointMove)
		eval.ApplyMove(move)
		depth++
	}

	final := [2]float32{state.GoalValue(game.Role0) / 100, state.GoalValue(game.Role1) / 100}
	for i := range samples {
		samples[i].FinalScore = final
		samples[i].GameLength = depth
	}
	return samples, nil
}
