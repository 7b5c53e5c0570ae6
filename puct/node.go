package puct

import (
	"fmt"
	"sync"

	"github.com/puctzero/puctzero/game"
)

// Node is one position in the search tree. Nodes live in Tree.nodes and are
// addressed by handle; Tree grows nodes by append, which may reallocate the
// slice, so a *Node is only stable until the next allocation while a handle
// stays valid until the node is freed.
type Node struct {
	lock sync.Mutex

	id   handle
	tree *Tree

	state         game.State
	leadRoleIndex game.Role

	isTerminal bool
	predicted  bool

	// from the oracle
	finalScore [2]float32
	// from the game, only set when isTerminal, in [0, 100]
	terminalScores [2]float32

	mcVisits uint32
	mcScore  [2]float32
}

// Child is one edge out of a Node: a legal move, its prior policy
// probability, and (once expanded) the handle of the resulting Node.
type Child struct {
	move       int32
	order      int // original legal-move ordering, used to break visit ties
	policyProb float32
	toNode     handle

	// debug only, populated by the last select that considered this child
	debugNodeScore float32
	debugPuctScore float32
}

// childVisits returns the child's visit count, or 0 if unexpanded.
func (t *Tree) childVisits(c *Child) uint32 {
	if !c.toNode.isValid() {
		return 0
	}
	return t.nodeFromHandle(c.toNode).Visits()
}

// Format implements fmt.Formatter for debug printing, in the teacher's
// terse "{Field: value, ...}" style.
func (n *Node) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "{Node %d, lead %d, visits %d, terminal %v, score %v}",
		n.id, n.leadRoleIndex, n.Visits(), n.isTerminal, n.mcScore)
}

// Visits returns the number of times this node has been backed up through.
func (n *Node) Visits() uint32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.mcVisits
}

// Score returns the running mean score for role.
func (n *Node) Score(role game.Role) float32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.mcScore[role]
}

// IsTerminal reports whether the node is a terminal state.
func (n *Node) IsTerminal() bool {
	return n.isTerminal
}

// update applies one backpropagation step for every role.
func (n *Node) update(scores [2]float32) {
	n.lock.Lock()
	defer n.lock.Unlock()
	for i := 0; i < 2; i++ {
		n.mcScore[i] = (float32(n.mcVisits)*n.mcScore[i] + scores[i]) / float32(n.mcVisits+1)
	}
	n.mcVisits++
}

func (n *Node) reset() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.state = nil
	n.leadRoleIndex = 0
	n.isTerminal = false
	n.predicted = false
	n.finalScore = [2]float32{}
	n.terminalScores = [2]float32{}
	n.mcVisits = 0
	n.mcScore = [2]float32{}
}
