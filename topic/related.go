package topic

// RelatedSet answers membership questions about related topics
type RelatedSet interface {
	Contains(node Node) bool
	Nodes() []Node
}

// Related is a RelatedSet keyed by UniqueKey
type Related struct {
	nodes []Node
	keys  map[string]struct{}
}

var _ RelatedSet = (*Related)(nil)

func NewRelated(nodes ...Node) *Related {
	r := &Related{keys: make(map[string]struct{}, len(nodes))}
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if _, ok := r.keys[node.UniqueKey()]; ok {
			continue
		}
		r.keys[node.UniqueKey()] = struct{}{}
		r.nodes = append(r.nodes, node)
	}
	return r
}

func (r *Related) Contains(node Node) bool {
	if r == nil || node == nil {
		return false
	}
	_, ok := r.keys[node.UniqueKey()]
	return ok
}

func (r *Related) Nodes() []Node {
	if r == nil {
		return nil
	}
	return r.nodes
}

func (r *Related) Len() int {
	if r == nil {
		return 0
	}
	return len(r.nodes)
}
