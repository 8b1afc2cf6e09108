package memtree

import (
	"strconv"
	"strings"

	"shears/ports"
)

// Node is an in-memory decision tree node carrying only the counts needed for pruning
type Node struct {
	Label   string  `json:"label,omitempty"`
	Records int     `json:"records"`
	Errors  int     `json:"errors"`
	Nodes   []*Node `json:"children,omitempty"`
}

var _ ports.TreeNode = (*Node)(nil)

// NewLeaf creates a leaf node
func NewLeaf(records, errors int) *Node {
	return &Node{Records: records, Errors: errors}
}

// NewSplit creates an internal node over the given children
func NewSplit(records, errors int, children ...*Node) *Node {
	return &Node{Records: records, Errors: errors, Nodes: children}
}

func (n *Node) RecordCount() int { return n.Records }

func (n *Node) ErrorCount() int { return n.Errors }

func (n *Node) IsLeaf() bool { return len(n.Nodes) == 0 }

// Children returns the child nodes as TreeNodes. Nil children are kept as nil
// interfaces so the pruning rules can reject them.
func (n *Node) Children() []ports.TreeNode {
	if len(n.Nodes) == 0 {
		return nil
	}
	out := make([]ports.TreeNode, len(n.Nodes))
	for i, c := range n.Nodes {
		if c != nil {
			out[i] = c
		}
	}
	return out
}

// Clone returns a deep copy of the subtree rooted at n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Label: n.Label, Records: n.Records, Errors: n.Errors}
	if len(n.Nodes) > 0 {
		c.Nodes = make([]*Node, len(n.Nodes))
		for i, child := range n.Nodes {
			c.Nodes[i] = child.Clone()
		}
	}
	return c
}

// Collapse returns a copy of root where every node at one of the given paths
// is replaced by a leaf with the same counts. Paths are dot-separated child
// indices from the root ("" is the root itself); unknown paths are ignored.
func Collapse(root *Node, paths []string) *Node {
	out := root.Clone()
	for _, path := range paths {
		if target := Find(out, path); target != nil {
			target.Nodes = nil
		}
	}
	return out
}

// Find resolves a dot-separated child index path, returning nil when it does not exist
func Find(root *Node, path string) *Node {
	cur := root
	if path == "" {
		return cur
	}
	for _, part := range strings.Split(path, ".") {
		idx, err := strconv.Atoi(part)
		if err != nil || cur == nil || idx < 0 || idx >= len(cur.Nodes) {
			return nil
		}
		cur = cur.Nodes[idx]
	}
	return cur
}

// Leaves counts the leaves of the subtree rooted at n
func Leaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	total := 0
	for _, c := range n.Nodes {
		total += Leaves(c)
	}
	return total
}
