package pruning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shears/internal/errors"
	"shears/ports"
)

type fakeNode struct {
	records  int
	errors   int
	children []ports.TreeNode
}

func (n *fakeNode) RecordCount() int           { return n.records }
func (n *fakeNode) ErrorCount() int            { return n.errors }
func (n *fakeNode) Children() []ports.TreeNode { return n.children }
func (n *fakeNode) IsLeaf() bool               { return len(n.children) == 0 }

func leaf(records, errs int) *fakeNode {
	return &fakeNode{records: records, errors: errs}
}

func split(records, errs int, children ...ports.TreeNode) *fakeNode {
	return &fakeNode{records: records, errors: errs, children: children}
}

// MockTreeNode records which capabilities the rule reads
type MockTreeNode struct {
	mock.Mock
}

func (m *MockTreeNode) RecordCount() int { return m.Called().Int(0) }
func (m *MockTreeNode) ErrorCount() int  { return m.Called().Int(0) }
func (m *MockTreeNode) IsLeaf() bool     { return m.Called().Bool(0) }
func (m *MockTreeNode) Children() []ports.TreeNode {
	return m.Called().Get(0).([]ports.TreeNode)
}

func TestShouldPrune_PureChildrenCollapse(t *testing.T) {
	node := split(10, 0, leaf(5, 0), leaf(5, 0))

	a, err := Assess(node, WithConfidence(25))
	require.NoError(t, err)

	parent := 10 * (1 - math.Pow(0.25, 1.0/10))
	child := 5 * (1 - math.Pow(0.25, 1.0/5))
	assert.InDelta(t, parent, a.ParentEstimate, 1e-7)
	assert.InDelta(t, 2*child, a.ChildrenEstimate, 1e-7)
	assert.InDelta(t, 1.294, a.ParentEstimate, 1e-3)
	assert.InDelta(t, 2.421, a.ChildrenEstimate, 1e-3)
	assert.Equal(t, parent <= 2*child, a.Prune)

	prune, err := ShouldPrune(node)
	require.NoError(t, err)
	assert.True(t, prune)
}

func TestShouldPrune_UsefulSplitIsKept(t *testing.T) {
	// the split separates the two classes perfectly
	node := split(20, 10, leaf(10, 0), leaf(10, 0))

	prune, err := ShouldPrune(node)
	require.NoError(t, err)
	assert.False(t, prune)
}

func TestShouldPrune_MatchesEstimatorAcrossConfidence(t *testing.T) {
	node := split(16, 1, leaf(15, 0), leaf(1, 0))

	for _, c := range []float64{1, 25, 50} {
		a, err := Assess(node, WithConfidence(c))
		require.NoError(t, err)

		parent, err := EstimatedErrors(1, 16, WithConfidence(c))
		require.NoError(t, err)
		left, err := EstimatedErrors(0, 15, WithConfidence(c))
		require.NoError(t, err)
		right, err := EstimatedErrors(0, 1, WithConfidence(c))
		require.NoError(t, err)

		assert.InDelta(t, left+right, a.ChildrenEstimate, 1e-12)
		assert.Equal(t, parent <= left+right, a.Prune, "confidence=%g", c)
	}
}

func TestShouldPrune_NonLeafChild(t *testing.T) {
	node := split(10, 2, leaf(4, 1), split(6, 1, leaf(3, 0), leaf(3, 1)))

	_, err := ShouldPrune(node)
	require.Error(t, err)
	assert.True(t, errors.IsStructuralViolation(err))
}

func TestShouldPrune_NilInputs(t *testing.T) {
	_, err := ShouldPrune(nil)
	assert.True(t, errors.IsStructuralViolation(err))

	_, err = ShouldPrune(split(4, 1, leaf(2, 0), nil))
	assert.True(t, errors.IsStructuralViolation(err))
}

func TestShouldPrune_LeafHasNothingToCollapse(t *testing.T) {
	a, err := Assess(leaf(6, 0))
	require.NoError(t, err)
	assert.False(t, a.Prune)
	assert.InDelta(t, 1.238, a.ParentEstimate, 1e-3)
}

func TestShouldPrune_PropagatesEstimatorErrors(t *testing.T) {
	_, err := ShouldPrune(split(4, 5, leaf(4, 0)))
	assert.True(t, errors.IsRangeViolation(err))

	_, err = ShouldPrune(split(4, 1, leaf(2, 3), leaf(2, 0)))
	assert.True(t, errors.IsRangeViolation(err))
	assert.Contains(t, err.Error(), "child 0")

	_, err = ShouldPrune(split(4, 1, leaf(2, 0), leaf(2, 1)), WithConfidence(75))
	assert.True(t, errors.IsConfidenceOutOfRange(err))
}

func TestShouldPrune_StopsAtFirstNonLeafChild(t *testing.T) {
	child := new(MockTreeNode)
	child.On("IsLeaf").Return(false).Once()

	node := new(MockTreeNode)
	node.On("ErrorCount").Return(1).Once()
	node.On("RecordCount").Return(4).Once()
	node.On("IsLeaf").Return(false).Once()
	node.On("Children").Return([]ports.TreeNode{child}).Once()

	_, err := ShouldPrune(node)
	assert.True(t, errors.IsStructuralViolation(err))

	node.AssertExpectations(t)
	child.AssertExpectations(t)
}
