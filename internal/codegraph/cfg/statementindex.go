package cfg

import "sort"

// Statement is one entry of the file-wide statement index of §4.4: a
// (start_line, end_line) range paired with the structural node it came
// from. The index is built once per file in a single AST pass and answers
// range queries in O(log n + k) via binary search over a slice sorted by
// start_line.
type Statement struct {
	StartLine int
	EndLine   int
	NodeRef   any // opaque pointer to the owning structural node
}

// StatementIndex serves range queries over a file's statements.
type StatementIndex struct {
	statements []Statement
	// maxEndPrefix[i] = max(EndLine) over statements[0:i+1]. Monotonically
	// non-decreasing, so the smallest index whose prefix max reaches a given
	// startLine can be found by binary search (see InRange).
	maxEndPrefix []int
}

// BuildStatementIndex sorts statements by StartLine once and returns a ready
// index. Callers must not mutate the slice afterwards.
func BuildStatementIndex(statements []Statement) *StatementIndex {
	sorted := make([]Statement, len(statements))
	copy(sorted, statements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	prefix := make([]int, len(sorted))
	running := 0
	for i, st := range sorted {
		if i == 0 || st.EndLine > running {
			running = st.EndLine
		}
		prefix[i] = running
	}
	return &StatementIndex{statements: sorted, maxEndPrefix: prefix}
}

// InRange returns every statement whose range overlaps [startLine, endLine],
// in O(log n + k). Statements nest (an enclosing block's range can start far
// before the query yet still overlap it), so the lower search bound isn't
// simply "first StartLine >= startLine": it is the first index whose running
// maximum EndLine reaches startLine, found by binary search over the
// monotonic maxEndPrefix array. A linear scan from there collects matches
// until StartLine exceeds endLine.
func (s *StatementIndex) InRange(startLine, endLine int) []Statement {
	lo := sort.Search(len(s.maxEndPrefix), func(i int) bool {
		return s.maxEndPrefix[i] >= startLine
	})
	var out []Statement
	for i := lo; i < len(s.statements) && s.statements[i].StartLine <= endLine; i++ {
		if s.statements[i].EndLine >= startLine {
			out = append(out, s.statements[i])
		}
	}
	return out
}

// Len reports the number of indexed statements.
func (s *StatementIndex) Len() int { return len(s.statements) }
