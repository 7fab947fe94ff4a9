package ast

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteXML writes the tree as XML. Every element is named after its node;
// nodes with a token carry tokenValue, tokenLine, and tokenColumn
// attributes. Leaves are self-closing.
func (t *Tree) WriteXML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if root := t.Root(); root != None {
		t.writeXML(bw, root, 0)
	}
	return bw.Flush()
}

func (t *Tree) writeXML(w *bufio.Writer, id NodeID, depth int) {
	n := &t.nodes[id]
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(xmlName(n.Name))
	if tok := n.Token; tok != nil {
		w.WriteString(` tokenValue="`)
		xml.EscapeText(w, []byte(tok.Value))
		fmt.Fprintf(w, `" tokenLine="%d" tokenColumn="%d"`, tok.Line, tok.Column)
	}
	if n.IsLeaf() {
		w.WriteString("/>\n")
		return
	}
	w.WriteString(">\n")
	for _, child := range n.Children {
		t.writeXML(w, child, depth+1)
	}
	w.WriteString(indent)
	w.WriteString("</")
	w.WriteString(xmlName(n.Name))
	w.WriteString(">\n")
}

// xmlName makes a node name usable as an element name.
func xmlName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ':':
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case '0' <= r && r <= '9' && i != 0:
		default:
			r = '_'
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// WriteText writes the tree as an indented outline, one node per line.
// Leaves show their token's value and line:column.
func (t *Tree) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if root := t.Root(); root != None {
		t.writeText(bw, root, 0)
	}
	return bw.Flush()
}

func (t *Tree) writeText(w *bufio.Writer, id NodeID, depth int) {
	n := &t.nodes[id]
	w.WriteString(strings.Repeat("  ", depth))
	w.WriteString(n.Name)
	if n.IsLeaf() && n.Token != nil {
		fmt.Fprintf(w, " %s %d:%d", strconv.Quote(n.Token.Value), n.Token.Line, n.Token.Column)
	}
	w.WriteByte('\n')
	for _, child := range n.Children {
		t.writeText(w, child, depth+1)
	}
}

// String returns the tree as WriteText renders it.
func (t *Tree) String() string {
	var sb strings.Builder
	_ = t.WriteText(&sb)
	return sb.String()
}
