// Package symbolgraph projects an ir.Document into the lightweight
// Symbol-Graph of §4.10: symbols, relations, and precomputed reverse
// indices, at roughly 200 bytes per symbol versus ~500 for a full IR node.
package symbolgraph

import "github.com/viant/codegraph/internal/codegraph/ir"

// Symbol is the projected unit of §4.10.
type Symbol struct {
	ID          ir.NodeID
	Kind        ir.Kind
	FQN         string
	Name        string
	RepoID      string
	SnapshotID  string
	Span        ir.Span
	ParentID    ir.NodeID
	HasParent   bool
	SignatureID ir.NodeID
	HasSig      bool
	TypeID      ir.NodeID
	HasType     bool
}

// RelationKind is a Symbol-Graph relation; it reuses ir.EdgeKind so
// projection is a narrowing, not a re-encoding.
type RelationKind = ir.EdgeKind

// Relation is a directed edge between two symbols, §4.10.
type Relation struct {
	ID       ir.EdgeID
	Kind     RelationKind
	SourceID ir.NodeID
	TargetID ir.NodeID
	Span     ir.Span
	HasSpan  bool
}

// Graph is the projected Symbol-Graph plus its precomputed reverse indices.
type Graph struct {
	Symbols   map[ir.NodeID]*Symbol
	Relations []Relation

	CalledBy        map[ir.NodeID][]ir.NodeID
	ImportedBy      map[ir.NodeID][]ir.NodeID
	ParentToChildren map[ir.NodeID][]ir.NodeID
	TypeUsers       map[ir.NodeID][]ir.NodeID
	ReadsBy         map[ir.NodeID][]ir.NodeID
	WritesBy        map[ir.NodeID][]ir.NodeID

	Outgoing map[ir.NodeID][]ir.EdgeID
	Incoming map[ir.NodeID][]ir.EdgeID
}
