package puct

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/puctzero/puctzero/game"
)

// topByVisits returns the index of root's child with the most visits,
// breaking ties by original legal-move order.
func (t *Tree) topByVisits(root *Node) int {
	children := t.children[root.id]
	best := 0
	var bestVisits uint32
	bestOrder := -1
	for i, c := range children {
		v := t.childVisits(&children[i])
		if v > bestVisits || (v == bestVisits && (bestOrder == -1 || c.order < bestOrder)) {
			bestVisits = v
			best = i
			bestOrder = c.order
		}
		_ = i
	}
	return best
}

// topByScore returns the index of root's child with the highest node score
// from the lead role's perspective, unexpanded children scoring -1.
func (t *Tree) topByScore(root *Node) int {
	children := t.children[root.id]
	best := 0
	bestScore := float32(-1)
	for i, c := range children {
		score := float32(-1)
		if c.toNode.isValid() {
			score = t.nodeFromHandle(c.toNode).Score(root.leadRoleIndex)
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// chooseTopVisits implements the choose_top_visits strategy.
func (t *Tree) chooseTopVisits(root *Node) *Child {
	return &t.children[root.id][t.topByVisits(root)]
}

// chooseConverge implements choose_converge: accept immediately on a
// decisive score, otherwise re-search with Dirichlet noise disabled until
// the visit and score leaders agree or the deadline passes.
func (t *Tree) chooseConverge(root *Node, deadline time.Time) (*Child, error) {
	bestVisitIdx := t.topByVisits(root)
	children := t.children[root.id]
	bestVisit := &children[bestVisitIdx]

	if bestVisit.toNode.isValid() {
		score := t.nodeFromHandle(bestVisit.toNode).Score(root.leadRoleIndex)
		if score >= 0.9 || score <= 0.1 {
			return bestVisit, nil
		}
	}

	bestScoreIdx := t.topByScore(root)
	if bestVisitIdx == bestScoreIdx {
		return bestVisit, nil
	}

	savedAlpha := t.conf.DirichletNoiseAlpha
	t.conf.DirichletNoiseAlpha = -1
	defer func() { t.conf.DirichletNoiseAlpha = savedAlpha }()

	for time.Now().Before(deadline) {
		if _, err := t.playout(); err != nil {
			return nil, err
		}
		if t.topByVisits(root) == t.topByScore(root) {
			break
		}
	}

	children = t.children[root.id]
	return &children[t.topByVisits(root)], nil
}

// probabilities returns a temperature-weighted visit distribution over
// root's children, in child order, matching get_probabilities in the
// source design.
func (t *Tree) probabilities(root *Node, temperature float32) []float32 {
	children := t.children[root.id]
	var totalVisits float32
	for i := range children {
		totalVisits += float32(t.childVisits(&children[i]))
	}
	if totalVisits < 1.0 {
		totalVisits = 1.0
	}

	weights := make([]float32, len(children))
	var sum float32
	for i := range children {
		v := float32(t.childVisits(&children[i]))
		weights[i] = math32.Pow((v+1)/totalVisits, temperature)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// chooseTemperature implements choose_temperature: early-game exploration
// by sampling from a temperature-softened visit distribution.
func (t *Tree) chooseTemperature(root *Node, gameDepth int) *Child {
	c := t.conf
	if gameDepth > c.DepthTemperatureStop {
		return t.chooseTopVisits(root)
	}

	depth := float32(gameDepth-c.DepthTemperatureStart) * c.DepthTemperatureIncrement
	if depth < 1 {
		depth = 1
	}
	temp := c.Temperature * depth

	weights := t.probabilities(root, temp)
	expected := t.rng.Float32() * c.RandomScale

	children := t.children[root.id]
	var seen float32
	idx := len(children) - 1
	for i, w := range weights {
		seen += w
		if seen > expected {
			idx = i
			break
		}
	}
	return &children[idx]
}

// Distribution returns the move-probability distribution over the root's
// children reflecting visit counts, for the caller of Search.
func (e *Evaluator) Distribution() map[int32]float32 {
	root := e.tree.nodeFromHandle(e.tree.root)
	weights := e.tree.probabilities(root, 1)
	out := make(map[int32]float32, len(weights))
	for i, c := range e.tree.children[root.id] {
		out[c.move] = weights[i]
	}
	return out
}

// noopFor returns the action the caller's own role must play this turn
// when it is not the lead role, or -1 when the caller is the lead.
func noopFor(root *Node, ourRole game.Role) int32 {
	if root.leadRoleIndex == ourRole {
		return -1
	}
	return root.state.NoopMove(ourRole)
}
