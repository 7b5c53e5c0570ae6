package puct

import (
	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
)

// playout runs one selection -> expansion -> evaluation -> backpropagation
// cycle from the root and returns the number of nodes on the backed-up path
// (root and leaf included).
func (t *Tree) playout() (int, error) {
	path := make([]handle, 0, 16)
	current := t.root
	depth := 0

	var scores [2]float32
	for {
		path = append(path, current)
		n := t.nodeFromHandle(current)

		if n.isTerminal {
			scores = scaleScores(n.terminalScores, 0.01)
			break
		}

		child := t.selectChild(n, depth)
		if child == nil {
			return 0, errors.New("puct: node has no children to select from")
		}

		if !child.toNode.isValid() {
			childHandle, err := t.expand(current, child)
			if err != nil {
				return 0, err
			}
			path = append(path, childHandle)
			scores = t.nodeFromHandle(childHandle).mcScore
			break
		}

		current = child.toNode
		depth++
	}

	t.backPropagate(path, scores)
	return len(path), nil
}

// expand applies child's move from parent's state, allocates the resulting
// node, requests its prediction, and wires the edge in.
func (t *Tree) expand(parent handle, child *Child) (handle, error) {
	parentNode := t.nodeFromHandle(parent)

	jointMove := [2]int32{}
	other := game.OtherRole(parentNode.leadRoleIndex)
	jointMove[parentNode.leadRoleIndex] = child.move
	jointMove[other] = parentNode.state.NoopMove(other)

	next := parentNode.state.Apply(jointMove)

	childHandle, err := t.createNode(next)
	if err != nil {
		return nilHandle, err
	}
	if err := t.predict(childHandle); err != nil {
		return nilHandle, err
	}
	child.toNode = childHandle
	return childHandle, nil
}

// backPropagate updates mc_score/mc_visits for every node on path, from the
// newly expanded (or terminal) leaf back up to the root.
func (t *Tree) backPropagate(path []handle, scores [2]float32) {
	for i := len(path) - 1; i >= 0; i-- {
		t.nodeFromHandle(path[i]).update(scores)
	}
}
