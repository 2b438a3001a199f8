package query

import (
	"context"
	"fmt"

	"github.com/foomo/contentserver-topics/service/vo"
	"github.com/foomo/contentserver-topics/topic"
)

// budget counts the matches left for one traversal
type budget struct {
	limit int
	used  int
}

func newBudget(limit int) *budget {
	return &budget{limit: limit}
}

// remaining returns Unbounded when there is no limit
func (b *budget) remaining() int {
	if b.limit == Unbounded {
		return Unbounded
	}
	return b.limit - b.used
}

func (b *budget) take() {
	b.used++
}

type traversal struct {
	ctx     context.Context
	opts    Options
	related topic.RelatedSet
	budget  *budget
}

// Run projects the topics below root that satisfy opts.
// related may be nil, it is then treated as an empty set.
func Run(root topic.Node, opts Options, related topic.RelatedSet) ([]*vo.ResultNode, error) {
	return RunContext(context.Background(), root, opts, related)
}

// RunContext is Run with cancellation between visits, partial results are discarded
func RunContext(ctx context.Context, root topic.Node, opts Options, related topic.RelatedSet) ([]*vo.ResultNode, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: query root is nil", topic.ErrInvalidArgument)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tr := &traversal{
		ctx:     ctx,
		opts:    opts,
		related: related,
		budget:  newBudget(opts.ResultLimit),
	}
	results := []*vo.ResultNode{}
	var err error
	if opts.ShowRoot {
		results, err = tr.visit(root, results)
	} else {
		for _, child := range root.Children() {
			if results, err = tr.visit(child, results); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (tr *traversal) visit(node topic.Node, out []*vo.ResultNode) ([]*vo.ResultNode, error) {
	if err := tr.ctx.Err(); err != nil {
		return out, err
	}
	valid := IsValid(node, tr.opts, tr.budget.remaining())
	var result *vo.ResultNode
	if valid {
		tr.budget.take()
		result = tr.project(node)
		out = append(out, result)
	}
	if (valid && tr.opts.IsRecursive) || tr.opts.FlattenStructure {
		var err error
		if tr.opts.FlattenStructure {
			for _, child := range node.Children() {
				if out, err = tr.visit(child, out); err != nil {
					return out, err
				}
			}
		} else {
			for _, child := range node.Children() {
				if result.Children, err = tr.visit(child, result.Children); err != nil {
					return out, err
				}
			}
		}
	}
	if result != nil {
		result.IsLeaf = len(result.Children) == 0
	}
	return out, nil
}

// Count returns the number of result nodes including all descendants
func Count(nodes []*vo.ResultNode) int {
	count := 0
	for _, node := range nodes {
		count += 1 + Count(node.Children)
	}
	return count
}
