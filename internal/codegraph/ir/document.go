// Package ir holds the structural core of the engine: interned strings,
// nodes, edges and the document that owns them. Higher layers (expr, cfg,
// dfg, typeresolve, ...) attach their own arenas to a Document's owning
// aggregate rather than the Document itself, so this package stays free of
// import cycles with every analysis that consumes it (§3 "Ownership").
package ir

import "sort"

// Document owns the node and edge arrays for one file or one repository
// snapshot's worth of structural IR, plus the string interner backing their
// names. A Document's arenas grow amortized O(1) and are released in one
// step on retirement (§4.1); nothing outside this package may retain a Node
// or Edge pointer across a call to AddNode/AddEdge, since the backing slice
// may be reallocated.
type Document struct {
	RepoID        string
	SnapshotID    string
	SchemaVersion string

	Strings *Interner

	nodes    []Node
	edges    []Edge
	edgeSeen map[string]EdgeID

	nextLocalSeq uint64
}

// NewDocument returns an empty Document ready to accept nodes and edges.
func NewDocument(repoID, snapshotID, schemaVersion string) *Document {
	return &Document{
		RepoID:        repoID,
		SnapshotID:    snapshotID,
		SchemaVersion: schemaVersion,
		Strings:       NewInterner(),
		edgeSeen:      make(map[string]EdgeID),
	}
}

// AddNode appends n, assigning it an ID and a LocalSeq that breaks sort ties
// deterministically (§4.11). It returns the assigned ID.
func (d *Document) AddNode(n Node) NodeID {
	n.ID = NodeID(len(d.nodes))
	n.LocalSeq = d.nextLocalSeq
	d.nextLocalSeq++
	d.nodes = append(d.nodes, n)
	return n.ID
}

// Node returns the node at id. The returned value is a copy; use UpdateNode
// to mutate in place.
func (d *Document) Node(id NodeID) (Node, bool) {
	if int(id) < 0 || int(id) >= len(d.nodes) {
		return Node{}, false
	}
	return d.nodes[id], true
}

// UpdateNode replaces the node stored at n.ID.
func (d *Document) UpdateNode(n Node) bool {
	if int(n.ID) < 0 || int(n.ID) >= len(d.nodes) {
		return false
	}
	d.nodes[n.ID] = n
	return true
}

// Nodes returns the full node slice in construction order. Callers must not
// retain it past the next AddNode call.
func (d *Document) Nodes() []Node { return d.nodes }

// AddEdge appends e unless an edge with identical (kind, source, target,
// span) already exists, in which case the existing edge's ID is returned
// and attrs from e are merged in (§3 "duplicates ... are merged").
func (d *Document) AddEdge(e Edge) EdgeID {
	key := edgeKey(e.Kind, e.SourceID, e.TargetID, e.Span, e.HasSpan)
	if existing, ok := d.edgeSeen[key]; ok {
		for k, v := range e.Attrs {
			if d.edges[existing].Attrs == nil {
				d.edges[existing].Attrs = make(map[string]any)
			}
			d.edges[existing].Attrs[k] = v
		}
		return existing
	}
	e.ID = EdgeID(len(d.edges))
	e.LocalSeq = d.nextLocalSeq
	d.nextLocalSeq++
	d.edges = append(d.edges, e)
	d.edgeSeen[key] = e.ID
	return e.ID
}

// Edges returns the full edge slice in construction order.
func (d *Document) Edges() []Edge { return d.edges }

// Retire releases the document's arenas in one step (§4.1). Callers must
// not use the document after calling Retire.
func (d *Document) Retire() {
	d.nodes = nil
	d.edges = nil
	d.edgeSeen = nil
	d.Strings = nil
}

// Validate checks invariant 1 of §8: every edge's endpoints resolve to a
// node in this document. External* nodes are still real Node entries (kind
// ExternalModule/ExternalFunction/ExternalType), so no special-casing is
// needed here.
func (d *Document) Validate() error {
	for _, e := range d.edges {
		if int(e.SourceID) >= len(d.nodes) {
			return dupErr("edge source_id out of range")
		}
		if int(e.TargetID) >= len(d.nodes) {
			return dupErr("edge target_id out of range")
		}
	}
	return nil
}

type simpleErr string

func (s simpleErr) Error() string { return string(s) }
func dupErr(msg string) error     { return simpleErr(msg) }

// NodeSortKey is the total-ordering key of §4.11:
// (file_path, kind, start_line, end_line, local_seq).
type NodeSortKey struct {
	FilePath  string
	Kind      Kind
	StartLine int
	EndLine   int
	LocalSeq  uint64
}

func nodeSortKey(n Node) NodeSortKey {
	return NodeSortKey{
		FilePath:  n.FilePath,
		Kind:      n.Kind,
		StartLine: n.Span.StartLine,
		EndLine:   n.Span.EndLine,
		LocalSeq:  n.LocalSeq,
	}
}

func lessNodeKey(a, b NodeSortKey) bool {
	if a.FilePath != b.FilePath {
		return a.FilePath < b.FilePath
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}
	if a.EndLine != b.EndLine {
		return a.EndLine < b.EndLine
	}
	return a.LocalSeq < b.LocalSeq
}

// EnforceTotalOrdering sorts nodes and edges by the §4.11 total order and
// rebuilds indices deterministically. It is the only place node/edge order
// changes after construction; everything upstream appends in AST/insertion
// order and lets this pass impose the final, deterministic order (§5
// "intermediate build order is unobservable by consumers").
func (d *Document) EnforceTotalOrdering() {
	sort.SliceStable(d.nodes, func(i, j int) bool {
		return lessNodeKey(nodeSortKey(d.nodes[i]), nodeSortKey(d.nodes[j]))
	})
	// edges sort by (kind, source_id, target_id, local_seq); their spans and
	// file paths are not part of the key.
	sort.SliceStable(d.edges, func(i, j int) bool {
		a, b := d.edges[i], d.edges[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetID != b.TargetID {
			return a.TargetID < b.TargetID
		}
		return a.LocalSeq < b.LocalSeq
	})
}
