package app

import (
	"context"
	stderrors "errors"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"shears/domain/pruning"
	"shears/internal/config"
	"shears/internal/errors"
	"shears/ports"
)

// PruningService plans pessimistic pruning over a whole tree, bottom-up
type PruningService struct {
	confidence  float64
	maxParallel int
	verbose     bool
}

// PruneDecision is the outcome of the pruning rule at one internal node
type PruneDecision struct {
	Path             string  `json:"path"`
	Records          int     `json:"records"`
	Errors           int     `json:"errors"`
	ParentEstimate   float64 `json:"parent_estimate"`
	ChildrenEstimate float64 `json:"children_estimate"`
	Prune            bool    `json:"prune"`
}

// PruningPlan lists every decision taken and the node paths to collapse.
// Paths are dot-separated child indices from the root; the root is "".
type PruningPlan struct {
	ID         string          `json:"id"`
	Confidence float64         `json:"confidence"`
	Decisions  []PruneDecision `json:"decisions"`
	Collapse   []string        `json:"collapse"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewPruningService creates a pruning service from configuration
func NewPruningService(cfg config.PruningConfig) *PruningService {
	maxParallel := cfg.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &PruningService{
		confidence:  cfg.Confidence,
		maxParallel: maxParallel,
		verbose:     cfg.Verbose,
	}
}

// NewPruningServiceFromEnv creates a pruning service from SHEARS_* environment variables
func NewPruningServiceFromEnv() (*PruningService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pruning configuration")
	}
	return NewPruningService(cfg.Pruning), nil
}

// Plan walks the tree rooted at root in post-order. A subtree whose children
// are all leaves, or would all be collapsed themselves, is assessed with the
// collapsed children presented as leaves. The tree is never modified.
func (s *PruningService) Plan(ctx context.Context, root ports.TreeNode) (*PruningPlan, error) {
	w := newWalk(s)

	if _, err := w.visit(ctx, root, ""); err != nil {
		return nil, err
	}

	sort.Slice(w.decisions, func(i, j int) bool {
		return comparePaths(w.decisions[i].Path, w.decisions[j].Path) < 0
	})

	plan := &PruningPlan{
		ID:         newPlanID(),
		Confidence: s.confidence,
		Decisions:  w.decisions,
		Collapse:   []string{},
		CreatedAt:  time.Now(),
	}
	for _, d := range w.decisions {
		if d.Prune {
			plan.Collapse = append(plan.Collapse, d.Path)
		}
	}

	if s.verbose {
		log.Printf("pruning plan %s: %d decisions, %d subtrees to collapse (confidence %g)",
			plan.ID, len(plan.Decisions), len(plan.Collapse), plan.Confidence)
	}

	return plan, nil
}

type walk struct {
	svc *PruningService
	// sem bounds the extra goroutines; the calling goroutine always works inline
	sem *semaphore.Weighted

	mu        sync.Mutex
	decisions []PruneDecision
}

func newWalk(s *PruningService) *walk {
	return &walk{
		svc:       s,
		sem:       semaphore.NewWeighted(int64(max(s.maxParallel-1, 0))),
		decisions: []PruneDecision{},
	}
}

// visit reports whether the subtree at node ends up as a leaf
func (w *walk) visit(ctx context.Context, node ports.TreeNode, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if node == nil {
		return false, errors.StructuralViolation("nil node at path " + displayPath(path))
	}
	if node.IsLeaf() {
		return true, nil
	}

	children := node.Children()
	collapsible := make([]bool, len(children))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		childPath := joinPath(path, i)
		run := func() error {
			ok, err := w.visit(gctx, child, childPath)
			collapsible[i] = ok
			return err
		}

		if w.sem.TryAcquire(1) {
			g.Go(func() error {
				defer w.sem.Release(1)
				return run()
			})
			continue
		}
		if err := run(); err != nil {
			cancel()
			// a sibling failure cancels gctx; report that failure, not the cancellation
			if gerr := g.Wait(); gerr != nil && stderrors.Is(err, context.Canceled) {
				return false, gerr
			}
			return false, err
		}
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	for _, ok := range collapsible {
		if !ok {
			return false, nil
		}
	}

	view := collapsedView{TreeNode: node, children: make([]ports.TreeNode, len(children))}
	for i, child := range children {
		view.children[i] = leafView{child}
	}

	a, err := pruning.Assess(view, pruning.WithConfidence(w.svc.confidence))
	if err != nil {
		return false, errors.Wrapf(err, "failed to assess node at path %s", displayPath(path))
	}

	d := PruneDecision{
		Path:             path,
		Records:          node.RecordCount(),
		Errors:           node.ErrorCount(),
		ParentEstimate:   a.ParentEstimate,
		ChildrenEstimate: a.ChildrenEstimate,
		Prune:            a.Prune,
	}
	w.record(d)

	return a.Prune, nil
}

func (w *walk) record(d PruneDecision) {
	w.mu.Lock()
	w.decisions = append(w.decisions, d)
	w.mu.Unlock()

	if w.svc.verbose {
		parent, _ := stats.Round(d.ParentEstimate, 3)
		children, _ := stats.Round(d.ChildrenEstimate, 3)
		log.Printf("node %s: %d/%d errors, estimate %g vs children %g, prune=%t",
			displayPath(d.Path), d.Errors, d.Records, parent, children, d.Prune)
	}
}

// collapsedView presents a node whose children are replaced by leaf views
type collapsedView struct {
	ports.TreeNode
	children []ports.TreeNode
}

func (v collapsedView) Children() []ports.TreeNode { return v.children }

// leafView presents a subtree as the leaf it would become after collapsing
type leafView struct {
	ports.TreeNode
}

func (leafView) IsLeaf() bool { return true }

func (leafView) Children() []ports.TreeNode { return nil }

func joinPath(parent string, index int) string {
	if parent == "" {
		return strconv.Itoa(index)
	}
	return parent + "." + strconv.Itoa(index)
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

// comparePaths orders paths by their numeric child indices, parents first
func comparePaths(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, _ := strconv.Atoi(as[i])
		bi, _ := strconv.Atoi(bs[i])
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	}
	return len(as) - len(bs)
}

func newPlanID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
