package pruning

import (
	"github.com/montanaflynn/stats"

	"shears/internal/errors"
	"shears/ports"
)

// Assessment holds both sides of the pessimistic pruning comparison
type Assessment struct {
	ParentEstimate   float64 `json:"parent_estimate"`
	ChildrenEstimate float64 `json:"children_estimate"`
	Prune            bool    `json:"prune"`
}

// ShouldPrune reports whether the split at node should be collapsed into a
// single leaf: true when the node's own pessimistic error estimate is no
// worse than the summed estimates of its children.
//
// Every child of node must be a leaf. A node that is already a leaf has
// nothing to collapse and yields false.
func ShouldPrune(node ports.TreeNode, opts ...Option) (bool, error) {
	a, err := Assess(node, opts...)
	if err != nil {
		return false, err
	}
	return a.Prune, nil
}

// Assess performs the pessimistic pruning comparison and returns its inputs
// alongside the decision.
func Assess(node ports.TreeNode, opts ...Option) (Assessment, error) {
	if node == nil {
		return Assessment{}, errors.StructuralViolation("cannot assess a nil node")
	}

	parent, err := EstimatedErrors(node.ErrorCount(), node.RecordCount(), opts...)
	if err != nil {
		return Assessment{}, errors.Wrap(err, "failed to estimate parent errors")
	}

	if node.IsLeaf() {
		return Assessment{ParentEstimate: parent}, nil
	}

	children := node.Children()
	estimates := make([]float64, 0, len(children))
	for i, child := range children {
		if child == nil || !child.IsLeaf() {
			return Assessment{}, errors.StructuralViolation("not all children are leaves")
		}
		est, err := EstimatedErrors(child.ErrorCount(), child.RecordCount(), opts...)
		if err != nil {
			return Assessment{}, errors.Wrapf(err, "failed to estimate errors of child %d", i)
		}
		estimates = append(estimates, est)
	}

	sum := 0.0
	if len(estimates) > 0 {
		sum, err = stats.Sum(estimates)
		if err != nil {
			return Assessment{}, errors.Wrap(err, "failed to sum children estimates")
		}
	}

	return Assessment{
		ParentEstimate:   parent,
		ChildrenEstimate: sum,
		Prune:            parent <= sum,
	}, nil
}
