package topic

import (
	"path"
	"strings"

	"github.com/foomo/contentserver/content"
	"github.com/spf13/cast"
)

const (
	AttributeContentID = "ContentID"
	AttributeURI       = "URI"
)

// FromContentNode converts a contentserver node tree into a topic graph.
// Topic ids are assigned in depth first order starting at 1, the contentserver id is
// kept in the ContentID attribute. rootKey overrides the key of the returned root.
func FromContentNode(node *content.Node, rootKey string) *Topic {
	if node == nil || node.Item == nil {
		return nil
	}
	nextID := 0
	root := fromContentNode(node, &nextID)
	if rootKey != "" {
		root.key = rootKey
	}
	return root
}

func fromContentNode(node *content.Node, nextID *int) *Topic {
	*nextID++
	item := node.Item
	t := New(*nextID, contentKey(item), item.MimeType).WithTitle(item.Name)
	t.SetAttribute(AttributeContentID, item.ID)
	t.SetAttribute(AttributeURI, item.URI)
	if item.Hidden {
		t.SetAttribute(AttributeIsHidden, "1")
	}
	for key, value := range item.Data {
		// nested documents are not searchable attribute values
		if str, err := cast.ToStringE(value); err == nil {
			t.SetAttribute(key, str)
		}
	}
	for _, id := range node.Index {
		child, ok := node.Nodes[id]
		if !ok || child == nil || child.Item == nil {
			continue
		}
		t.AddChild(fromContentNode(child, nextID))
	}
	return t
}

func contentKey(item *content.Item) string {
	key := path.Base(strings.TrimSuffix(item.URI, "/"))
	if key == "" || key == "." || key == "/" {
		return item.ID
	}
	return key
}
