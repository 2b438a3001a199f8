package query

import (
	"strings"

	"github.com/foomo/contentserver-topics/service/vo"
	"github.com/foomo/contentserver-topics/topic"
)

func (tr *traversal) project(node topic.Node) *vo.ResultNode {
	return &vo.ResultNode{
		ID:          node.ID(),
		Key:         node.Key(),
		Title:       displayTitle(node, tr.opts.UseKeyAsText),
		UniqueKey:   node.UniqueKey(),
		WebPath:     node.WebPath(),
		IsChecked:   isChecked(node, tr.opts, tr.related),
		IsDraggable: isDraggable(node),
		IsExpanded:  isExpanded(node, tr.opts, tr.related),
		Children:    []*vo.ResultNode{},
	}
}

func displayTitle(node topic.Node, useKey bool) string {
	if useKey || node.Title() == "" {
		return node.Key()
	}
	return node.Title()
}

// isDraggable is false when DisableDelete is truthy, a missing attribute counts as "0"
func isDraggable(node topic.Node) bool {
	return !topic.IsTruthy(node.Attributes()[topic.AttributeDisableDelete])
}

func isChecked(node topic.Node, opts Options, related topic.RelatedSet) *bool {
	if !opts.EnableCheckboxes() {
		return nil
	}
	checked := !opts.MarkRelated() || (related != nil && related.Contains(node))
	return &checked
}

// isExpanded is true when a related topic lies at or below node
func isExpanded(node topic.Node, opts Options, related topic.RelatedSet) bool {
	if !opts.ExpandRelated() || related == nil {
		return false
	}
	prefix := node.UniqueKey()
	for _, r := range related.Nodes() {
		if strings.HasPrefix(r.UniqueKey(), prefix) {
			return true
		}
	}
	return false
}
