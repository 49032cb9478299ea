package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/codegraph/internal/codegraph/ir"
)

// NodeSpan converts a tree-sitter node's position into ir.Span, §3
// "Byte offsets are authoritative; line/col are derived". tree-sitter
// rows/columns are 0-based; ir.Span's line/col are 1-based to match the
// spec's node/edge field descriptions.
func NodeSpan(fileID ir.FileID, n *sitter.Node) ir.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return ir.Span{
		FileID:     fileID,
		StartLine:  int(start.Row) + 1,
		StartCol:   int(start.Column) + 1,
		EndLine:    int(end.Row) + 1,
		EndCol:     int(end.Column) + 1,
		StartByte:  int(n.StartByte()),
		EndByte:    int(n.EndByte()),
	}
}

// Text returns the exact source slice a node spans.
func Text(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// FieldText returns the text of the named field child, or "" if absent.
func FieldText(n *sitter.Node, field string, source []byte) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return Text(child, source)
}

// FirstChildOfType returns the first direct child whose node type is one
// of types, depth-first among direct children only. Grounded on the
// teacher's repeated "for i := range ChildCount(); if child.Type() == ..."
// scans (`providers/golang/config.go`).
func FirstChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if _, ok := set[child.Type()]; ok {
			return child
		}
	}
	return nil
}

// TrimStringLiteral strips the surrounding quote characters tree-sitter
// leaves on interpreted/raw string literal nodes.
func TrimStringLiteral(raw string) string {
	return strings.Trim(raw, "\"'`")
}
