package puct

import (
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/oracle"
)

// Tree is the arena that owns every Node allocated during the lifetime of
// one move's search (or, when subtree reuse applies, a short chain of
// moves). There is no cross-move caching requirement; Tree.reset starts a
// new search from scratch.
type Tree struct {
	conf   Config
	oracle oracle.Inferencer
	rng    *rand.Rand

	nodes    []Node
	children [][]Child

	freelist []handle

	root handle
}

// NewTree allocates an empty arena for the given PUCT config and oracle.
func NewTree(conf Config, inferencer oracle.Inferencer) *Tree {
	return &Tree{
		conf:     conf,
		oracle:   inferencer,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		nodes:    make([]Node, 0, 4096),
		children: make([][]Child, 0, 4096),
		root:     nilHandle,
	}
}

// Nodes reports how many nodes are currently live in the arena.
func (t *Tree) Nodes() int { return len(t.nodes) - len(t.freelist) }

func (t *Tree) nodeFromHandle(h handle) *Node {
	return &t.nodes[h]
}

// Children returns the (mutable) child edges of the node at h.
func (t *Tree) Children(h handle) []Child {
	return t.children[h]
}

func (t *Tree) alloc() handle {
	if l := len(t.freelist); l > 0 {
		h := t.freelist[l-1]
		t.freelist = t.freelist[:l-1]
		t.children[h] = t.children[h][:0]
		return h
	}
	t.nodes = append(t.nodes, Node{})
	t.children = append(t.children, nil)
	h := handle(len(t.nodes) - 1)
	n := &t.nodes[h]
	n.id = h
	n.tree = t
	return h
}

func (t *Tree) free(h handle) {
	t.nodeFromHandle(h).reset()
	t.children[h] = t.children[h][:0]
	t.freelist = append(t.freelist, h)
}

// createNode allocates a node for state, setting its lead role by the
// two-role noop convention and wiring up one Child per legal action of the
// lead role if the state is non-terminal.
func (t *Tree) createNode(state game.State) (handle, error) {
	h := t.alloc()
	n := t.nodeFromHandle(h)
	n.state = state
	n.isTerminal = state.IsTerminal()

	if n.isTerminal {
		n.terminalScores = [2]float32{state.GoalValue(game.Role0), state.GoalValue(game.Role1)}
		// LeadRole is meaningless at a terminal, but any mcScore consumer
		// needs a role to index with; default to Role0.
		n.leadRoleIndex = game.Role0
		return h, nil
	}

	lead, err := game.LeadRole(state)
	if err != nil {
		return nilHandle, errors.Wrap(err, "puct: create node")
	}
	n.leadRoleIndex = lead

	legal := state.LegalMoves(lead)
	children := make([]Child, len(legal))
	for i, mv := range legal {
		children[i] = Child{move: mv, order: i, toNode: nilHandle}
	}
	t.children[h] = children
	return h, nil
}

// predict requests a prediction for the node at h and applies it: sets
// final_score/mc_score for non-terminals, normalises and sorts children by
// policy probability. Terminal nodes get mc_score = terminal_scores/100
// without consulting the oracle.
func (t *Tree) predict(h handle) error {
	n := t.nodeFromHandle(h)
	if n.isTerminal {
		n.mcScore = scaleScores(n.terminalScores, 0.01)
		return nil
	}

	preds, err := t.oracle.Predict([]game.State{n.state}, []game.Role{n.leadRoleIndex})
	if err != nil {
		return errors.Wrap(err, "puct: oracle prediction failed")
	}
	if len(preds) != 1 {
		return errors.New("puct: oracle returned wrong number of predictions")
	}
	pred := preds[0]

	n.predicted = true
	n.finalScore = pred.Value
	n.mcScore = pred.Value

	return t.applyPolicy(h, pred.Policy)
}

// predictBatch is predict's multi-node form: every terminal in hs gets its
// mc_score set directly, and every non-terminal is folded into a single
// oracle.Predict call, amortising oracle cost across the batch the way
// root pre-expansion requires.
func (t *Tree) predictBatch(hs []handle) error {
	var pending []handle
	var states []game.State
	var leadRoles []game.Role

	for _, h := range hs {
		n := t.nodeFromHandle(h)
		if n.isTerminal {
			n.mcScore = scaleScores(n.terminalScores, 0.01)
			continue
		}
		pending = append(pending, h)
		states = append(states, n.state)
		leadRoles = append(leadRoles, n.leadRoleIndex)
	}
	if len(pending) == 0 {
		return nil
	}

	preds, err := t.oracle.Predict(states, leadRoles)
	if err != nil {
		return errors.Wrap(err, "puct: oracle prediction failed")
	}
	if len(preds) != len(pending) {
		return errors.New("puct: oracle returned wrong number of predictions")
	}

	for i, h := range pending {
		n := t.nodeFromHandle(h)
		pred := preds[i]
		n.predicted = true
		n.finalScore = pred.Value
		n.mcScore = pred.Value
		if err := t.applyPolicy(h, pred.Policy); err != nil {
			return err
		}
	}
	return nil
}

// applyPolicy normalises the predicted policy across n's children (the
// prediction is over the whole action space; only legal moves matter) and
// sorts children by probability so pre-expansion picks the highest-prior
// moves first.
func (t *Tree) applyPolicy(h handle, policy []float32) error {
	children := t.children[h]
	if len(children) == 0 {
		return nil
	}

	var total float32
	for i := range children {
		mv := children[i].move
		if int(mv) >= len(policy) {
			return errors.Wrapf(ErrEmptyPolicy, "move %d", mv)
		}
		children[i].policyProb = policy[mv]
		total += children[i].policyProb
	}
	if total > 0 {
		for i := range children {
			children[i].policyProb /= total
		}
	} else {
		uniform := 1.0 / float32(len(children))
		for i := range children {
			children[i].policyProb = uniform
		}
	}

	sort.SliceStable(children, func(i, j int) bool {
		return children[i].policyProb > children[j].policyProb
	})
	return nil
}

// sampleDirichlet draws one Dirichlet(alpha, ..., alpha) sample of
// dimension n, used for root exploration noise.
func (t *Tree) sampleDirichlet(alpha float64, n int) []float64 {
	params := make([]float64, n)
	for i := range params {
		params[i] = alpha
	}
	dist := distmv.NewDirichlet(params, distrand.NewSource(uint64(t.rng.Int63())))
	return dist.Rand(nil)
}

func scaleScores(s [2]float32, factor float32) [2]float32 {
	return [2]float32{s[0] * factor, s[1] * factor}
}

// reset discards the whole arena. Used when subtree reuse is not possible.
func (t *Tree) reset() {
	t.nodes = t.nodes[:0]
	t.children = t.children[:0]
	t.freelist = t.freelist[:0]
	t.root = nilHandle
}

// pruneSiblings frees every subtree reachable from parent other than the
// one rooted at keep, recursively. parent keeps every child edge; the
// pruned edges only lose their toNode link.
func (t *Tree) pruneSiblings(parent handle, keep handle) {
	for i := range t.children[parent] {
		c := &t.children[parent][i]
		if !c.toNode.isValid() || c.toNode == keep {
			continue
		}
		t.pruneSubtree(c.toNode)
		c.toNode = nilHandle
	}
}

func (t *Tree) pruneSubtree(h handle) {
	for _, c := range t.children[h] {
		if c.toNode.isValid() {
			t.pruneSubtree(c.toNode)
		}
	}
	t.free(h)
}
