package topic

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Definition is the serialized form of a topic graph
type Definition struct {
	ID          int                    `yaml:"id"`
	Key         string                 `yaml:"key"`
	Title       string                 `yaml:"title,omitempty"`
	ContentType string                 `yaml:"contentType"`
	Attributes  map[string]interface{} `yaml:"attributes,omitempty"`
	// Related maps a relationship namespace to target unique keys
	Related  map[string][]string `yaml:"related,omitempty"`
	Children []*Definition       `yaml:"children,omitempty"`
}

// LoadFile reads a yaml topic graph from path
func LoadFile(path string) (*Topic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a yaml topic graph and links its relationships
func Load(r io.Reader) (*Topic, error) {
	def := &Definition{}
	if err := yaml.NewDecoder(r).Decode(def); err != nil {
		return nil, fmt.Errorf("failed to decode topic graph: %w", err)
	}
	return Build(def)
}

// Build turns a definition tree into a linked topic graph
func Build(def *Definition) (*Topic, error) {
	if def == nil || def.Key == "" {
		return nil, fmt.Errorf("%w: topic graph root needs a key", ErrInvalidArgument)
	}
	var pending []pendingRelation
	root, err := build(def, nil, &pending)
	if err != nil {
		return nil, err
	}
	for _, relation := range pending {
		target := FindByUniqueKey(root, relation.targetKey)
		if target == nil {
			return nil, fmt.Errorf("%w: %s relates to unknown topic %q", ErrInvalidArgument, relation.source.UniqueKey(), relation.targetKey)
		}
		relation.source.Relate(relation.namespace, target.(*Topic))
	}
	return root, nil
}

type pendingRelation struct {
	source    *Topic
	namespace string
	targetKey string
}

func build(def *Definition, parent *Topic, pending *[]pendingRelation) (*Topic, error) {
	if def.Key == "" {
		return nil, fmt.Errorf("%w: topic %d below %s has no key", ErrInvalidArgument, def.ID, parent.UniqueKey())
	}
	t := New(def.ID, def.Key, def.ContentType).WithTitle(def.Title)
	for key, value := range def.Attributes {
		str, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q of %q: %v", ErrInvalidArgument, key, def.Key, err)
		}
		t.SetAttribute(key, str)
	}
	if parent != nil {
		for _, sibling := range parent.children {
			if sibling.key == def.Key {
				return nil, fmt.Errorf("%w: duplicate key %q below %s", ErrInvalidArgument, def.Key, parent.UniqueKey())
			}
		}
		parent.AddChild(t)
	}
	namespaces := make([]string, 0, len(def.Related))
	for namespace := range def.Related {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)
	for _, namespace := range namespaces {
		for _, targetKey := range def.Related[namespace] {
			*pending = append(*pending, pendingRelation{source: t, namespace: namespace, targetKey: targetKey})
		}
	}
	for _, childDef := range def.Children {
		if childDef == nil {
			continue
		}
		if _, err := build(childDef, t, pending); err != nil {
			return nil, err
		}
	}
	return t, nil
}
