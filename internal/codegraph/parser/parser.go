// Package parser adapts tree-sitter grammars into the uniform tree L1
// generation consumes, §4.2: language-specific AST -> stable byte spans,
// independent of which language's grammar produced the tree.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Grammar names a tree-sitter language binding plus the file extensions
// it claims, mirroring the teacher pack's `LanguageConfig` shape
// (`providers/golang/config.go` et al.) generalized across languages.
type Grammar interface {
	Language() string
	Extensions() []string
	SitterLanguage() *sitter.Language
}

// SyntaxError reports one ERROR/MISSING node tree-sitter's error recovery
// left behind; a partial tree with SyntaxErrors is still usable (§4.2
// "partial-tree-on-failure").
type SyntaxError struct {
	Line, Column int
	Missing      bool
}

// Tree is the adapter's output: a parsed, still-open tree-sitter tree plus
// the language that produced it and any recovered syntax errors. Callers
// must call Close when done.
type Tree struct {
	Source []byte
	Lang   string
	Root   *sitter.Node
	Errors []SyntaxError

	raw *sitter.Tree
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.raw != nil {
		t.raw.Close()
	}
}

// HasErrors reports whether tree-sitter's error recovery found any
// ERROR/MISSING nodes.
func (t *Tree) HasErrors() bool { return len(t.Errors) > 0 }

// Adapter parses source text for one grammar, reusing a single
// `sitter.Parser` the way the teacher's `base.Provider` does (one parser
// per language, `SetLanguage` once at construction).
type Adapter struct {
	grammar Grammar
	parser  *sitter.Parser
}

// New builds an Adapter bound to grammar. Panics if the grammar's Go
// binding failed to load, matching the teacher's base.New behavior — a
// missing grammar binding is a build-time configuration error, not a
// recoverable runtime one.
func New(grammar Grammar) *Adapter {
	lang := grammar.SitterLanguage()
	if lang == nil {
		panic(fmt.Sprintf("parser: failed to load tree-sitter language for %s", grammar.Language()))
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Adapter{grammar: grammar, parser: p}
}

// Language returns the grammar's identifier.
func (a *Adapter) Language() string { return a.grammar.Language() }

// Parse parses source from scratch.
func (a *Adapter) Parse(ctx context.Context, source []byte) (*Tree, error) {
	return a.parse(ctx, nil, source)
}

// IncrementalParse reparses source, handing oldTree to tree-sitter as the
// previous tree — tree-sitter's edit-then-reparse path, §4.2
// "incremental_parse". The adapter records no edits on oldTree, and Tree
// exposes no way to record them: oldTree goes to tree-sitter exactly as the
// earlier parse returned it.
func (a *Adapter) IncrementalParse(ctx context.Context, oldTree *Tree, source []byte) (*Tree, error) {
	var old *sitter.Tree
	if oldTree != nil {
		old = oldTree.raw
	}
	return a.parse(ctx, old, source)
}

func (a *Adapter) parse(ctx context.Context, old *sitter.Tree, source []byte) (*Tree, error) {
	raw, err := a.parser.ParseCtx(ctx, old, source)
	if err != nil {
		return nil, fmt.Errorf("parser: parse %s: %w", a.grammar.Language(), err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parser: parse %s: nil tree", a.grammar.Language())
	}

	tree := &Tree{Source: source, Lang: a.grammar.Language(), Root: raw.RootNode(), raw: raw}
	collectErrors(tree.Root, &tree.Errors)
	return tree, nil
}

// collectErrors walks the tree looking for ERROR nodes and MISSING leaf
// nodes, the two tree-sitter error-recovery markers (§4.2), grounded on
// the teacher pack's findErrors walk (`providers/base/provider.go`).
func collectErrors(node *sitter.Node, out *[]SyntaxError) {
	if node == nil {
		return
	}
	if node.Type() == "ERROR" {
		*out = append(*out, SyntaxError{
			Line:   int(node.StartPoint().Row) + 1,
			Column: int(node.StartPoint().Column) + 1,
		})
	} else if node.IsMissing() {
		*out = append(*out, SyntaxError{
			Line:    int(node.StartPoint().Row) + 1,
			Column:  int(node.StartPoint().Column) + 1,
			Missing: true,
		})
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectErrors(node.Child(i), out)
	}
}
