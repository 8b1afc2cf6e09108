package ports

// TreeNode is the read-only view of a decision tree node consumed by the pruning rules.
// Any tree implementation can be pruned as long as it exposes these counts.
type TreeNode interface {
	// RecordCount is the number of training records that reached this node
	RecordCount() int
	// ErrorCount is the number of those records the node misclassifies (<= RecordCount)
	ErrorCount() int
	Children() []TreeNode
	IsLeaf() bool
}
