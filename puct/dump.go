package puct

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
)

// DumpGraph renders the evaluator's current tree as a Graphviz dot string,
// descending at most conf.MaxDumpDepth levels from the root. It is a
// debugging aid for looking at the actual tree shape; nothing in this
// repository calls it automatically.
func (e *Evaluator) DumpGraph() (string, error) {
	if !e.tree.root.isValid() {
		return "", ErrNoRoot
	}

	g := gographviz.NewGraph()
	if err := g.SetName("puct"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	e.tree.dumpNode(g, e.tree.root, 0, e.conf.MaxDumpDepth)
	return g.String(), nil
}

func (t *Tree) dumpNode(g *gographviz.Graph, h handle, depth, maxDepth int) {
	n := t.nodeFromHandle(h)
	name := fmt.Sprintf("n%d", h)
	label := fmt.Sprintf(`"%v"`, n)
	_ = g.AddNode("puct", name, map[string]string{"label": label})

	if depth >= maxDepth {
		return
	}

	for _, c := range t.children[h] {
		if !c.toNode.isValid() {
			continue
		}
		childName := fmt.Sprintf("n%d", c.toNode)
		edgeLabel := fmt.Sprintf(`"move %d, p=%.3f"`, c.move, c.policyProb)
		t.dumpNode(g, c.toNode, depth+1, maxDepth)
		_ = g.AddEdge(name, childName, true, map[string]string{"label": edgeLabel})
	}
}
