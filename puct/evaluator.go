// Package puct implements the PUCT (predictor + UCT) tree search that
// chooses a move given a current position and a neural policy/value
// oracle. It is the hard engineering core described as C1 in the system
// design: single-threaded by default, arena-allocated, DAG-free.
package puct

import (
	"time"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/oracle"
)

// Evaluator drives one PUCT tree for one player across the course of a
// game, reusing the subtree under the played move when possible.
type Evaluator struct {
	conf   Config
	tree   *Tree
	oracle oracle.Inferencer
}

// New creates an Evaluator for conf, backed by the given prediction
// oracle.
func New(conf Config, inferencer oracle.Inferencer) (*Evaluator, error) {
	if !conf.IsValid() {
		return nil, errors.New("puct: invalid config")
	}
	return &Evaluator{
		conf:   conf,
		tree:   NewTree(conf, inferencer),
		oracle: inferencer,
	}, nil
}

// Nodes reports how many nodes the evaluator's tree currently holds.
func (e *Evaluator) Nodes() int { return e.tree.Nodes() }

// EstablishRoot creates (or confirms) the root node for state. When no
// root exists yet it is created and predicted; when conf.ExpandRoot > 0,
// its top children (by predicted policy, which is why this must happen
// after the root's own prediction reorders them) are expanded and
// predicted together, amortising oracle cost.
func (e *Evaluator) EstablishRoot(state game.State) error {
	if !e.tree.root.isValid() {
		root, err := e.tree.createNode(state)
		if err != nil {
			return err
		}
		e.tree.root = root
		if err := e.tree.predict(root); err != nil {
			return err
		}
	}

	if e.conf.ExpandRoot <= 0 {
		return nil
	}

	root := e.tree.nodeFromHandle(e.tree.root)
	children := e.tree.children[root.id]
	limit := e.conf.ExpandRoot
	if limit > len(children) {
		limit = len(children)
	}

	var batch []handle
	for i := 0; i < limit; i++ {
		c := &children[i]
		if c.toNode.isValid() {
			continue
		}
		h, err := e.tree.expandStructure(e.tree.root, c)
		if err != nil {
			return err
		}
		batch = append(batch, h)
	}
	return e.tree.predictBatch(batch)
}

// Search runs playouts from the established root until either the
// playout budget or the deadline is reached, then returns the chosen
// child's move together with the root's visit-count distribution. When
// ourRole is not the root's lead role, the returned move is ourRole's
// noop instead of the chosen child's move.
//
// ourRole decides the playout budget: PlayoutsPerIterationNoop applies
// when it is not our turn to move (the caller still searches, because
// the other side's best response matters for training signal), and
// PlayoutsPerIteration otherwise.
func (e *Evaluator) Search(ourRole game.Role, gameDepth int, deadline time.Time) (int32, map[int32]float32, error) {
	root := e.tree.nodeFromHandle(e.tree.root)

	budget := e.conf.PlayoutsPerIteration
	if root.leadRoleIndex != ourRole {
		budget = e.conf.PlayoutsPerIterationNoop
	}

	for i := 0; i < budget; i++ {
		if !time.Now().Before(deadline) {
			break
		}
		if _, err := e.tree.playout(); err != nil {
			return 0, nil, err
		}
	}

	choice, err := e.choose(root, gameDepth, deadline)
	if err != nil {
		return 0, nil, err
	}

	if noop := noopFor(root, ourRole); noop >= 0 {
		return noop, e.Distribution(), nil
	}
	return choice.move, e.Distribution(), nil
}

func (e *Evaluator) choose(root *Node, gameDepth int, deadline time.Time) (*Child, error) {
	switch e.conf.Choose {
	case ChooseConverge:
		return e.tree.chooseConverge(root, deadline)
	case ChooseTemperature:
		return e.tree.chooseTemperature(root, gameDepth), nil
	default:
		return e.tree.chooseTopVisits(root), nil
	}
}

// ApplyMove advances the evaluator past an externally-applied move: if the
// root's child for that move has been expanded, the root becomes that
// child and every sibling subtree is freed. Otherwise the whole tree is
// discarded and the next EstablishRoot call starts fresh.
func (e *Evaluator) ApplyMove(move int32) {
	root := e.tree.nodeFromHandle(e.tree.root)
	children := e.tree.children[root.id]

	for i := range children {
		if children[i].move != move {
			continue
		}
		next := children[i].toNode
		e.tree.pruneSiblings(e.tree.root, next)
		if !next.isValid() {
			e.tree.reset()
			return
		}
		e.tree.free(e.tree.root)
		e.tree.root = next
		return
	}
	e.tree.reset()
}

// expandStructure allocates the child's node and wires the edge without
// requesting a prediction (the caller batches prediction separately).
func (t *Tree) expandStructure(parent handle, child *Child) (handle, error) {
	parentNode := t.nodeFromHandle(parent)

	jointMove := [2]int32{}
	other := game.OtherRole(parentNode.leadRoleIndex)
	jointMove[parentNode.leadRoleIndex] = child.move
	jointMove[other] = parentNode.state.NoopMove(other)

	next := parentNode.state.Apply(jointMove)
	h, err := t.createNode(next)
	if err != nil {
		return nilHandle, err
	}
	child.toNode = h
	return h, nil
}
