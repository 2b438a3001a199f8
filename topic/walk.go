package topic

import "strings"

// Walk visits root and its descendants depth first in child order until fn returns false
func Walk(root Node, fn func(node Node) bool) bool {
	if root == nil {
		return true
	}
	if !fn(root) {
		return false
	}
	for _, child := range root.Children() {
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}

// FindByUniqueKey resolves a colon delimited key below root, root itself included
func FindByUniqueKey(root Node, uniqueKey string) Node {
	if root == nil || uniqueKey == "" {
		return nil
	}
	if root.UniqueKey() == uniqueKey {
		return root
	}
	var found Node
	Walk(root, func(node Node) bool {
		key := node.UniqueKey()
		if key == uniqueKey {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindByID returns the first topic with the given id
func FindByID(root Node, id int) Node {
	var found Node
	Walk(root, func(node Node) bool {
		if node.ID() == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Ancestors returns the parents of node ordered from the graph root down
func Ancestors(node Node) []Node {
	var ancestors []Node
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		ancestors = append(ancestors, parent)
	}
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return ancestors
}

// IsAncestorOrSelf reports whether descendant lies at or below ancestor by UniqueKey prefix
func IsAncestorOrSelf(ancestor, descendant Node) bool {
	return strings.HasPrefix(descendant.UniqueKey(), ancestor.UniqueKey())
}
