// Package golang implements the §4.2/§4.3 Go LanguagePlugin: a
// tree-sitter-backed structural IR generator, adapted from the teacher's
// go/ast-based GolangAnalyzer (`analyzer/golang_analyzer.go`) onto the
// polyglot tree-sitter adapter (`internal/codegraph/parser`) so Go shares
// one parsing backbone with Java and JSX instead of using go/parser
// directly. The staged shape — build a scope/declaration pass, then an
// expression/call pass — mirrors buildScopeHierarchy/processDeclarations/
// processExpressions in the teacher.
package golang

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/lang"
	"github.com/viant/codegraph/internal/codegraph/parser"
)

// Plugin implements lang.Plugin for Go.
type Plugin struct {
	// Resolver classifies import paths as internal/external to the
	// repository's own module. Optional: nil means every import is tagged
	// "unknown" rather than misclassified.
	Resolver *ModuleResolver
}

// New returns the Go LanguagePlugin.
func New() *Plugin { return &Plugin{} }

// WithModuleResolver attaches a ModuleResolver so generated import edges
// carry an internal/external classification.
func (p *Plugin) WithModuleResolver(r *ModuleResolver) *Plugin {
	p.Resolver = r
	return p
}

func (p *Plugin) Language() string           { return "go" }
func (p *Plugin) Extensions() []string       { return []string{".go"} }
func (p *Plugin) Grammar() parser.Grammar    { return parser.Go }

// generator carries the per-file state a single Generate call needs:
// the owning document, the file's NodeID, the source bytes, and the
// package name that qualifies every declared FQN.
type generator struct {
	doc      *ir.Document
	fileID   ir.NodeID
	filePath string
	source   []byte
	pkgName  string
	resolver *ModuleResolver
}

// Generate implements lang.Plugin.
func (p *Plugin) Generate(doc *ir.Document, filePath string, source []byte, tree *parser.Tree) (ir.NodeID, error) {
	g := &generator{doc: doc, filePath: filePath, source: source, resolver: p.Resolver}

	fileHash, err := lang.ContentHash(source)
	if err != nil {
		return 0, err
	}
	fileStable, err := lang.StableID(filePath, ir.KindFile, filePath, "file")
	if err != nil {
		return 0, err
	}

	fileNode := ir.Node{
		Kind:        ir.KindFile,
		Name:        filePath,
		FQN:         filePath,
		FilePath:    filePath,
		Span:        parser.NodeSpan(0, tree.Root),
		Language:    p.Language(),
		StableID:    fileStable,
		ContentHash: fileHash,
	}
	g.fileID = doc.AddNode(fileNode)

	root := tree.Root
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "package_clause":
			g.pkgName = parser.FieldText(child, "name", source)
			if g.pkgName == "" {
				g.pkgName = parser.Text(parser.FirstChildOfType(child, "package_identifier"), source)
			}
		case "import_declaration":
			g.processImport(child)
		case "function_declaration":
			g.processFunction(child)
		case "method_declaration":
			g.processMethod(child)
		case "type_declaration":
			g.processTypeDecl(child)
		case "var_declaration", "const_declaration":
			g.processVarDecl(child, child.Type() == "const_declaration")
		}
	}

	g.processCalls(root)

	return g.fileID, nil
}

func (g *generator) contains(parent, child ir.NodeID) {
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeContains, SourceID: parent, TargetID: child})
}

func (g *generator) processImport(n *sitter.Node) {
	specs := collectByType(n, "import_spec")
	if len(specs) == 0 {
		// single-import form: `import "fmt"` has no import_spec wrapper
		if path := importPathOf(n, g.source); path != "" {
			g.addImport(path, n)
		}
		return
	}
	for _, spec := range specs {
		if path := importPathOf(spec, g.source); path != "" {
			g.addImport(path, spec)
		}
	}
}

func importPathOf(n *sitter.Node, source []byte) string {
	lit := parser.FieldText(n, "path", source)
	if lit == "" {
		lit = parser.Text(parser.FirstChildOfType(n, "interpreted_string_literal", "raw_string_literal"), source)
	}
	return parser.TrimStringLiteral(lit)
}

func (g *generator) addImport(path string, n *sitter.Node) {
	span := parser.NodeSpan(0, n)
	stable, _ := lang.StableID(g.filePath, ir.KindExternalModule, path, "import")
	node := ir.Node{
		Kind:     ir.KindExternalModule,
		Name:     path,
		FQN:      path,
		FilePath: g.filePath,
		Span:     span,
		Language: "go",
		StableID: stable,
	}
	id := g.doc.AddNode(node)
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeImports, SourceID: g.fileID, TargetID: id, Span: span, HasSpan: true})

	if g.resolver != nil {
		if added, ok := g.doc.Node(id); ok {
			added.SetAttr("lang_import_kind", g.resolver.Classify(path))
			g.doc.UpdateNode(added)
		}
	}
}

func (g *generator) processFunction(n *sitter.Node) {
	name := parser.FieldText(n, "name", g.source)
	if name == "" {
		return
	}
	g.addCallable(n, ir.KindFunction, name, g.qualify(name))
}

func (g *generator) processMethod(n *sitter.Node) {
	name := parser.FieldText(n, "name", g.source)
	if name == "" {
		return
	}
	recvType := receiverTypeName(n, g.source)
	fqn := g.qualify(name)
	if recvType != "" {
		fqn = g.qualify(recvType) + "." + name
	}
	g.addCallable(n, ir.KindMethod, name, fqn)
}

func (g *generator) addCallable(n *sitter.Node, kind ir.Kind, name, fqn string) {
	body := parser.Text(n, g.source)
	bodySpan := parser.NodeSpan(0, n)
	contentHash, _ := lang.ContentHash([]byte(body))
	stable, _ := lang.StableID(g.filePath, kind, fqn, structureSignature(n))

	node := ir.Node{
		Kind:        kind,
		Name:        name,
		FQN:         fqn,
		FilePath:    g.filePath,
		Span:        parser.NodeSpan(0, n),
		Language:    "go",
		StableID:    stable,
		ContentHash: contentHash,
		BodySpan:    bodySpan,
		HasBodySpan: true,
	}
	id := g.doc.AddNode(node)
	g.contains(g.fileID, id)
}

func (g *generator) processTypeDecl(n *sitter.Node) {
	for _, spec := range collectByType(n, "type_spec") {
		name := parser.FieldText(spec, "name", g.source)
		if name == "" {
			continue
		}
		fqn := g.qualify(name)
		stable, _ := lang.StableID(g.filePath, ir.KindType, fqn, structureSignature(spec))
		contentHash, _ := lang.ContentHash([]byte(parser.Text(spec, g.source)))
		node := ir.Node{
			Kind:        ir.KindType,
			Name:        name,
			FQN:         fqn,
			FilePath:    g.filePath,
			Span:        parser.NodeSpan(0, spec),
			Language:    "go",
			StableID:    stable,
			ContentHash: contentHash,
		}
		id := g.doc.AddNode(node)
		g.contains(g.fileID, id)

		if fields := parser.FirstChildOfType(spec, "struct_type"); fields != nil {
			g.processStructFields(id, fields, fqn)
		}
	}
}

func (g *generator) processStructFields(typeID ir.NodeID, structType *sitter.Node, typeFQN string) {
	fieldList := parser.FirstChildOfType(structType, "field_declaration_list")
	if fieldList == nil {
		return
	}
	for _, decl := range collectByType(fieldList, "field_declaration") {
		for _, nameNode := range collectByType(decl, "field_identifier") {
			name := parser.Text(nameNode, g.source)
			fqn := typeFQN + "." + name
			stable, _ := lang.StableID(g.filePath, ir.KindField, fqn, "field")
			node := ir.Node{
				Kind:     ir.KindField,
				Name:     name,
				FQN:      fqn,
				FilePath: g.filePath,
				Span:     parser.NodeSpan(0, decl),
				Language: "go",
				StableID: stable,
			}
			id := g.doc.AddNode(node)
			g.contains(typeID, id)
		}
	}
}

func (g *generator) processVarDecl(n *sitter.Node, isConst bool) {
	kind := ir.KindVariable
	specType := "var_spec"
	if isConst {
		specType = "const_spec"
	}
	for _, spec := range collectByType(n, specType) {
		for _, name := range directIdentifierNames(spec, g.source) {
			fqn := g.qualify(name)
			stable, _ := lang.StableID(g.filePath, kind, fqn, "var")
			node := ir.Node{
				Kind:     kind,
				Name:     name,
				FQN:      fqn,
				FilePath: g.filePath,
				Span:     parser.NodeSpan(0, spec),
				Language: "go",
				StableID: stable,
			}
			id := g.doc.AddNode(node)
			g.contains(g.fileID, id)
		}
	}
}

// processCalls walks the whole tree for call_expression nodes and emits a
// shallow CALLS edge from the file node to an ExternalFunction placeholder
// named after the call's callee text. The edge is not resolved to the
// callee's declared Function/Method node here or later: symbolgraph.Build
// projects CALLS edges as emitted and does not rewrite placeholders.
func (g *generator) processCalls(n *sitter.Node) {
	if n.Type() == "call_expression" {
		callee := parser.FieldText(n, "function", g.source)
		if callee != "" {
			g.addCallEdge(callee, n)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			g.processCalls(child)
		}
	}
}

func (g *generator) addCallEdge(callee string, n *sitter.Node) {
	span := parser.NodeSpan(0, n)
	stable, _ := lang.StableID(g.filePath, ir.KindExternalFunc, callee, "call-target")
	target := ir.Node{
		Kind:     ir.KindExternalFunc,
		Name:     callee,
		FQN:      callee,
		FilePath: g.filePath,
		Span:     span,
		Language: "go",
		StableID: stable,
	}
	targetID := g.doc.AddNode(target)
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeCalls, SourceID: g.fileID, TargetID: targetID, Span: span, HasSpan: true})
}

func (g *generator) qualify(name string) string {
	if g.pkgName == "" {
		return name
	}
	return g.pkgName + "." + name
}

func receiverTypeName(n *sitter.Node, source []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "parameter_declaration":
			typeNode := child.ChildByFieldName("type")
			if typeNode == nil {
				continue
			}
			return stripPointer(parser.Text(typeNode, source))
		}
	}
	return ""
}

func stripPointer(s string) string {
	if len(s) > 0 && s[0] == '*' {
		return s[1:]
	}
	return s
}

// structureSignature produces a coarse structural summary (child type
// sequence) for StableID's body-structure component, so body edits that
// don't change a declaration's shape still hash to the same stable_id.
func structureSignature(n *sitter.Node) string {
	sig := make([]byte, 0, 64)
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		sig = append(sig, []byte(child.Type())...)
		sig = append(sig, ',')
	}
	return string(sig)
}

// directIdentifierNames returns the direct-child identifier names of a
// var_spec/const_spec, stopping at the first "=" token so identifiers
// appearing in the initializer expression (the value side, which may itself
// reference other names) are never mistaken for declared names.
func directIdentifierNames(spec *sitter.Node, source []byte) []string {
	var names []string
	for i := 0; i < int(spec.ChildCount()); i++ {
		child := spec.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "=" {
			break
		}
		if child.Type() == "identifier" {
			names = append(names, parser.Text(child, source))
		}
	}
	return names
}

func collectByType(n *sitter.Node, nodeType string) []*sitter.Node {
	var out []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(cur *sitter.Node) {
		if cur.Type() == nodeType {
			out = append(out, cur)
		}
		for i := 0; i < int(cur.ChildCount()); i++ {
			if child := cur.Child(i); child != nil {
				walk(child)
			}
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil {
			walk(child)
		}
	}
	return out
}
