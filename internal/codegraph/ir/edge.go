package ir

// EdgeKind enumerates the edge kinds of §3.
type EdgeKind string

const (
	EdgeContains        EdgeKind = "CONTAINS"
	EdgeImports         EdgeKind = "IMPORTS"
	EdgeInherits        EdgeKind = "INHERITS"
	EdgeImplements       EdgeKind = "IMPLEMENTS"
	EdgeCalls           EdgeKind = "CALLS"
	EdgeReferencesType  EdgeKind = "REFERENCES_TYPE"
	EdgeReferencesSym   EdgeKind = "REFERENCES_SYMBOL"
	EdgeReads           EdgeKind = "READS"
	EdgeWrites          EdgeKind = "WRITES"
	EdgeCFGNext         EdgeKind = "CFG_NEXT"
	EdgeCFGBranch       EdgeKind = "CFG_BRANCH"
	EdgeCFGLoop         EdgeKind = "CFG_LOOP"
	EdgeCFGHandler      EdgeKind = "CFG_HANDLER"
	EdgeThrows          EdgeKind = "THROWS"
	EdgeCaptures        EdgeKind = "CAPTURES"
	EdgeAccesses        EdgeKind = "ACCESSES"
	EdgeShadows         EdgeKind = "SHADOWS"
)

// Edge is a directed relationship between two nodes, §3. Duplicate edges
// (identical kind, source, target, span) are merged by the document's
// AddEdge.
type Edge struct {
	ID       EdgeID
	Kind     EdgeKind
	SourceID NodeID
	TargetID NodeID
	Span     Span
	HasSpan  bool
	LocalSeq uint64
	Attrs    map[string]any
}

func edgeKey(kind EdgeKind, source, target NodeID, span Span, hasSpan bool) string {
	if !hasSpan {
		return string(kind) + "|" + itoa(uint32(source)) + "|" + itoa(uint32(target)) + "|-"
	}
	return string(kind) + "|" + itoa(uint32(source)) + "|" + itoa(uint32(target)) + "|" +
		itoa(uint32(span.StartByte)) + "-" + itoa(uint32(span.EndByte))
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
