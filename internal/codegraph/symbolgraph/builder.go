package symbolgraph

import "github.com/viant/codegraph/internal/codegraph/ir"

// isSymbolKind reports whether an ir.Node kind is one the Symbol-Graph
// projects; CFGBlock and Signature nodes are structural scaffolding, not
// addressable symbols in their own right.
func isSymbolKind(k ir.Kind) bool {
	switch k {
	case ir.KindFile, ir.KindModule, ir.KindClass, ir.KindFunction, ir.KindMethod,
		ir.KindVariable, ir.KindField, ir.KindType,
		ir.KindExternalModule, ir.KindExternalFunc, ir.KindExternalType:
		return true
	default:
		return false
	}
}

// Build projects doc into a Symbol-Graph and computes every reverse index
// named in §4.10 in a single pass over the edges.
func Build(doc *ir.Document) *Graph {
	g := &Graph{
		Symbols:          map[ir.NodeID]*Symbol{},
		CalledBy:         map[ir.NodeID][]ir.NodeID{},
		ImportedBy:       map[ir.NodeID][]ir.NodeID{},
		ParentToChildren: map[ir.NodeID][]ir.NodeID{},
		TypeUsers:        map[ir.NodeID][]ir.NodeID{},
		ReadsBy:          map[ir.NodeID][]ir.NodeID{},
		WritesBy:         map[ir.NodeID][]ir.NodeID{},
		Outgoing:         map[ir.NodeID][]ir.EdgeID{},
		Incoming:         map[ir.NodeID][]ir.EdgeID{},
	}

	for _, n := range doc.Nodes() {
		if !isSymbolKind(n.Kind) {
			continue
		}
		sym := &Symbol{
			ID:         n.ID,
			Kind:       n.Kind,
			FQN:        n.FQN,
			Name:       n.Name,
			RepoID:     doc.RepoID,
			SnapshotID: doc.SnapshotID,
			Span:       n.Span,
		}
		if n.HasParent {
			sym.ParentID = n.ParentID
			sym.HasParent = true
		}
		g.Symbols[n.ID] = sym
	}

	for _, e := range doc.Edges() {
		rel := Relation{ID: e.ID, Kind: e.Kind, SourceID: e.SourceID, TargetID: e.TargetID}
		if e.HasSpan {
			rel.Span = e.Span
			rel.HasSpan = true
		}
		g.Relations = append(g.Relations, rel)

		g.Outgoing[e.SourceID] = append(g.Outgoing[e.SourceID], e.ID)
		g.Incoming[e.TargetID] = append(g.Incoming[e.TargetID], e.ID)

		switch e.Kind {
		case ir.EdgeCalls:
			g.CalledBy[e.TargetID] = append(g.CalledBy[e.TargetID], e.SourceID)
		case ir.EdgeImports:
			g.ImportedBy[e.TargetID] = append(g.ImportedBy[e.TargetID], e.SourceID)
		case ir.EdgeContains:
			g.ParentToChildren[e.SourceID] = append(g.ParentToChildren[e.SourceID], e.TargetID)
		case ir.EdgeReferencesType:
			g.TypeUsers[e.TargetID] = append(g.TypeUsers[e.TargetID], e.SourceID)
		case ir.EdgeReads:
			g.ReadsBy[e.TargetID] = append(g.ReadsBy[e.TargetID], e.SourceID)
		case ir.EdgeWrites:
			g.WritesBy[e.TargetID] = append(g.WritesBy[e.TargetID], e.SourceID)
		}
	}

	return g
}
