// Package jsx implements the §4.2/§4.3 JSX/TSX LanguagePlugin. The teacher's
// `analyzer/jsx_analyzer.go` never got past a TODO ("Implement JSX parsing
// using tree-sitter") and fell back to regex scanning; this plugin finishes
// that intent using this module's shared tree-sitter adapter
// (parser.JSX, the TSX grammar) instead, so JSX gets the same byte-exact
// span guarantees as Go and Java rather than a string-matching
// approximation.
package jsx

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/lang"
	"github.com/viant/codegraph/internal/codegraph/parser"
)

// Plugin implements lang.Plugin for JSX/TSX.
type Plugin struct{}

// New returns the JSX LanguagePlugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Language() string        { return "jsx" }
func (p *Plugin) Extensions() []string    { return []string{".jsx", ".tsx"} }
func (p *Plugin) Grammar() parser.Grammar { return parser.JSX }

type generator struct {
	doc      *ir.Document
	fileID   ir.NodeID
	filePath string
	source   []byte
}

// Generate implements lang.Plugin. JSX/TSX has no package/namespace
// concept at the file level (each file is its own module, per ES module
// semantics), so FQNs here are simply "filePath:name" rather than the
// package-qualified FQNs lang/golang and lang/java build.
func (p *Plugin) Generate(doc *ir.Document, filePath string, source []byte, tree *parser.Tree) (ir.NodeID, error) {
	g := &generator{doc: doc, filePath: filePath, source: source}

	fileHash, err := lang.ContentHash(source)
	if err != nil {
		return 0, err
	}
	fileStable, err := lang.StableID(filePath, ir.KindFile, filePath, "file")
	if err != nil {
		return 0, err
	}

	g.fileID = doc.AddNode(ir.Node{
		Kind:        ir.KindFile,
		Name:        filePath,
		FQN:         filePath,
		FilePath:    filePath,
		Span:        parser.NodeSpan(0, tree.Root),
		Language:    "jsx",
		StableID:    fileStable,
		ContentHash: fileHash,
	})

	root := tree.Root
	for _, imp := range findNodesByType(root, "import_statement") {
		g.processImport(imp)
	}
	for _, fn := range findNodesByType(root, "function_declaration") {
		g.processFunctionDeclaration(fn)
	}
	for _, lex := range findNodesByType(root, "lexical_declaration") {
		g.processLexicalDeclaration(lex)
	}
	for _, cls := range findNodesByType(root, "class_declaration") {
		g.processClassDeclaration(cls)
	}

	g.processCalls(root)

	return g.fileID, nil
}

func (g *generator) contains(parent, child ir.NodeID) {
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeContains, SourceID: parent, TargetID: child})
}

func (g *generator) processImport(n *sitter.Node) {
	source := parser.FieldText(n, "source", g.source)
	path := parser.TrimStringLiteral(source)
	if path == "" {
		return
	}
	span := parser.NodeSpan(0, n)
	stable, _ := lang.StableID(g.filePath, ir.KindExternalModule, path, "import")
	target := g.doc.AddNode(ir.Node{
		Kind: ir.KindExternalModule, Name: path, FQN: path,
		FilePath: g.filePath, Span: span, Language: "jsx", StableID: stable,
	})
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeImports, SourceID: g.fileID, TargetID: target, Span: span, HasSpan: true})
}

// processFunctionDeclaration emits a Function node for `function Foo() {}`,
// including PascalCase-named declarations that double as React components
// — the spec's node kinds don't carve out a separate "Component" kind, so
// components are Functions per §3's kind enum, with the framework-specific
// fact recorded under the fw_ namespace §3 reserves for it.
func (g *generator) processFunctionDeclaration(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.Text(nameNode, g.source)
	g.addFunction(n, name)
}

func (g *generator) processLexicalDeclaration(n *sitter.Node) {
	for _, decl := range collectByType(n, "variable_declarator") {
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := parser.Text(nameNode, g.source)
		value := decl.ChildByFieldName("value")
		if value != nil && (value.Type() == "arrow_function" || value.Type() == "function") {
			g.addFunction(decl, name)
			continue
		}
		// not a function-valued binding: record as a module-level variable
		fqn := g.filePath + ":" + name
		stable, _ := lang.StableID(g.filePath, ir.KindVariable, fqn, "var")
		id := g.doc.AddNode(ir.Node{
			Kind: ir.KindVariable, Name: name, FQN: fqn,
			FilePath: g.filePath, Span: parser.NodeSpan(0, decl), Language: "jsx", StableID: stable,
		})
		g.contains(g.fileID, id)
	}
}

func (g *generator) addFunction(n *sitter.Node, name string) {
	fqn := g.filePath + ":" + name
	body := parser.Text(n, g.source)
	contentHash, _ := lang.ContentHash([]byte(body))
	stable, _ := lang.StableID(g.filePath, ir.KindFunction, fqn, structureSignature(n))

	node := ir.Node{
		Kind:        ir.KindFunction,
		Name:        name,
		FQN:         fqn,
		FilePath:    g.filePath,
		Span:        parser.NodeSpan(0, n),
		Language:    "jsx",
		StableID:    stable,
		ContentHash: contentHash,
		BodySpan:    parser.NodeSpan(0, n),
		HasBodySpan: true,
	}
	if isComponentName(name) {
		node.SetAttr("fw_react_component", true)
	}
	id := g.doc.AddNode(node)
	g.contains(g.fileID, id)
}

func (g *generator) processClassDeclaration(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.Text(nameNode, g.source)
	fqn := g.filePath + ":" + name
	contentHash, _ := lang.ContentHash([]byte(parser.Text(n, g.source)))
	stable, _ := lang.StableID(g.filePath, ir.KindClass, fqn, structureSignature(n))

	classID := g.doc.AddNode(ir.Node{
		Kind:        ir.KindClass,
		Name:        name,
		FQN:         fqn,
		FilePath:    g.filePath,
		Span:        parser.NodeSpan(0, n),
		Language:    "jsx",
		StableID:    stable,
		ContentHash: contentHash,
	})
	g.contains(g.fileID, classID)

	if heritage := n.ChildByFieldName("superclass"); heritage != nil {
		superName := parser.Text(heritage, g.source)
		span := parser.NodeSpan(0, heritage)
		stable, _ := lang.StableID(g.filePath, ir.KindExternalType, superName, "type-ref")
		target := g.doc.AddNode(ir.Node{
			Kind: ir.KindExternalType, Name: superName, FQN: superName,
			FilePath: g.filePath, Span: span, Language: "jsx", StableID: stable,
		})
		g.doc.AddEdge(ir.Edge{Kind: ir.EdgeInherits, SourceID: classID, TargetID: target, Span: span, HasSpan: true})
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for _, method := range collectByType(body, "method_definition") {
		methodNameNode := method.ChildByFieldName("name")
		if methodNameNode == nil {
			continue
		}
		methodName := parser.Text(methodNameNode, g.source)
		methodFQN := fqn + "." + methodName
		stable, _ := lang.StableID(g.filePath, ir.KindMethod, methodFQN, structureSignature(method))
		id := g.doc.AddNode(ir.Node{
			Kind: ir.KindMethod, Name: methodName, FQN: methodFQN,
			FilePath: g.filePath, Span: parser.NodeSpan(0, method), Language: "jsx", StableID: stable,
		})
		g.contains(classID, id)
	}
}

// processCalls emits a shallow CALLS edge for every call_expression,
// including React hook calls (useState, useEffect, ...); hooks are not told
// apart from ordinary calls here or in symbolgraph.Build.
func (g *generator) processCalls(n *sitter.Node) {
	for _, call := range collectByType(n, "call_expression") {
		fn := call.ChildByFieldName("function")
		if fn == nil {
			continue
		}
		callee := parser.Text(fn, g.source)
		span := parser.NodeSpan(0, call)
		stable, _ := lang.StableID(g.filePath, ir.KindExternalFunc, callee, "call-target")
		target := g.doc.AddNode(ir.Node{
			Kind: ir.KindExternalFunc, Name: callee, FQN: callee,
			FilePath: g.filePath, Span: span, Language: "jsx", StableID: stable,
		})
		g.doc.AddEdge(ir.Edge{Kind: ir.EdgeCalls, SourceID: g.fileID, TargetID: target, Span: span, HasSpan: true})
	}
}

// isComponentName reports whether name follows React's PascalCase component
// naming convention (as opposed to camelCase hooks/helpers).
func isComponentName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func structureSignature(n *sitter.Node) string {
	sig := make([]byte, 0, 64)
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			sig = append(sig, []byte(child.Type())...)
			sig = append(sig, ',')
		}
	}
	return string(sig)
}

func collectByType(n *sitter.Node, nodeType string) []*sitter.Node {
	return findNodesByType(n, nodeType)
}

func findNodesByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var out []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == nodeType {
			out = append(out, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				walk(child)
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			walk(child)
		}
	}
	return out
}
