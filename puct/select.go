package puct

import (
	"github.com/chewxy/math32"
)

// tieJitter is a tiny uniform perturbation added to each child's select
// score so that exact ties do not always resolve to the same child; it is
// far smaller than any real PUCT/score difference.
const tieJitter = 1e-6

// puctConstant picks puct_constant_before/_after per spec: while fewer than
// the configured number of a node's children have been expanded, use the
// "before" constant, scaled by the node's own value estimate when
// puct_constant_tune is set.
func (t *Tree) puctConstant(n *Node, isRoot bool) float32 {
	constant := t.conf.PUCTConstantAfter

	threshold := t.conf.PUCTBeforeExpansions
	if isRoot {
		threshold = t.conf.PUCTBeforeRootExpansions
	}

	var expanded int
	for _, c := range t.children[n.id] {
		if c.toNode.isValid() {
			expanded++
		}
	}
	if expanded < threshold {
		constant = t.conf.PUCTConstantBefore
	}

	if t.conf.PUCTConstantTune {
		constant *= n.finalScore[n.leadRoleIndex]
	}
	return constant
}

// selectChild picks the best child of n at search depth using the PUCT
// formula, applying Dirichlet exploration noise at the root only.
func (t *Tree) selectChild(n *Node, depth int) *Child {
	children := t.children[n.id]

	var noise []float64
	if depth == 0 && t.conf.DirichletNoiseAlpha >= 0 && len(children) > 0 {
		noise = t.sampleDirichlet(t.conf.DirichletNoiseAlpha, len(children))
	}

	puctConst := t.puctConstant(n, n.id == t.root)
	numerator := math32.Sqrt(float32(n.mcVisits + 1))

	var best *Child
	bestScore := math32.Inf(-1)

	for i := range children {
		c := &children[i]

		var childVisits uint32
		var nodeScore float32
		if c.toNode.isValid() {
			cn := t.nodeFromHandle(c.toNode)
			childVisits = cn.Visits()
			nodeScore = cn.Score(n.leadRoleIndex)
			if cn.IsTerminal() {
				// terminals are enforced over other nodes: the oracle can
				// return near-1.0 for a move it thinks wins regardless.
				nodeScore *= 1.02
			}
		}

		childPct := c.policyProb
		if noise != nil {
			eps := t.conf.DirichletNoisePct
			childPct = (1-eps)*childPct + eps*float32(noise[i])
		}

		puctScore := puctConst * childPct * numerator / float32(childVisits+1)
		score := nodeScore + puctScore + tieJitter*t.rng.Float32()

		c.debugNodeScore = nodeScore
		c.debugPuctScore = puctScore

		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}
