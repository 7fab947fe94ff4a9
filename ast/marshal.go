package ast

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

type exportToken struct {
	Type          string   `json:"type" yaml:"type"`
	Value         string   `json:"value" yaml:"value"`
	OriginalValue string   `json:"originalValue,omitempty" yaml:"originalValue,omitempty"`
	Line          int      `json:"line" yaml:"line"`
	Column        int      `json:"column" yaml:"column"`
	Comments      []string `json:"comments,omitempty" yaml:"comments,omitempty"`
}

type exportNode struct {
	Type     string        `json:"type" yaml:"type"`
	From     int           `json:"from" yaml:"from"`
	To       int           `json:"to" yaml:"to"`
	Token    *exportToken  `json:"token,omitempty" yaml:"token,omitempty"`
	Children []*exportNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type exportTree struct {
	Source string      `json:"source,omitempty" yaml:"source,omitempty"`
	Root   *exportNode `json:"root" yaml:"root"`
}

func (t *Tree) export() *exportTree {
	out := &exportTree{Source: t.Source}
	if root := t.Root(); root != None {
		out.Root = t.exportNode(root)
	}
	return out
}

func (t *Tree) exportNode(id NodeID) *exportNode {
	n := &t.nodes[id]
	out := &exportNode{Type: n.Name, From: n.From, To: n.To}
	if n.IsLeaf() && n.Token != nil {
		tok := n.Token
		et := &exportToken{
			Type:   tok.Type.Name(),
			Value:  tok.Value,
			Line:   tok.Line,
			Column: tok.Column,
		}
		if tok.OriginalValue != tok.Value {
			et.OriginalValue = tok.OriginalValue
		}
		for _, c := range tok.Comments() {
			et.Comments = append(et.Comments, c.Text())
		}
		out.Token = et
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, t.exportNode(child))
	}
	return out
}

// MarshalJSON renders the tree as nested JSON objects.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.export())
}

// MarshalYAML renders the tree with the same structure as MarshalJSON.
func (t *Tree) MarshalYAML() (any, error) {
	return t.export(), nil
}

var (
	_ json.Marshaler = (*Tree)(nil)
	_ yaml.Marshaler = (*Tree)(nil)
)
