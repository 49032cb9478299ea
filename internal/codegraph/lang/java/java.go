// Package java implements the §4.2/§4.3 Java LanguagePlugin, adapted
// directly from the teacher's `analyzer/java_analyzer.go` processDeclarations
// pass (package_declaration → class_declaration → field/method_declaration),
// which already used go-tree-sitter rather than a Java-specific parser, onto
// this module's shared parser.Adapter and ir.Document output shape.
package java

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/lang"
	"github.com/viant/codegraph/internal/codegraph/parser"
)

// Plugin implements lang.Plugin for Java.
type Plugin struct{}

// New returns the Java LanguagePlugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Language() string        { return "java" }
func (p *Plugin) Extensions() []string    { return []string{".java"} }
func (p *Plugin) Grammar() parser.Grammar { return parser.Java }

type generator struct {
	doc      *ir.Document
	fileID   ir.NodeID
	filePath string
	source   []byte
	pkgName  string
}

// Generate implements lang.Plugin.
func (p *Plugin) Generate(doc *ir.Document, filePath string, source []byte, tree *parser.Tree) (ir.NodeID, error) {
	g := &generator{doc: doc, filePath: filePath, source: source, pkgName: "default"}

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
		Language:    "java",
		StableID:    fileStable,
		ContentHash: fileHash,
	})

	root := tree.Root
	if pkgNode := findNodeByType(root, "package_declaration"); pkgNode != nil {
		if name := parser.FieldText(pkgNode, "name", source); name != "" {
			g.pkgName = name
		}
	}

	for _, importNode := range findNodesByType(root, "import_declaration") {
		g.processImport(importNode)
	}

	for _, classNode := range findNodesByType(root, "class_declaration") {
		g.processClass(classNode)
	}
	for _, ifaceNode := range findNodesByType(root, "interface_declaration") {
		g.processClass(ifaceNode)
	}

	g.processCalls(root)

	return g.fileID, nil
}

func (g *generator) contains(parent, child ir.NodeID) {
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeContains, SourceID: parent, TargetID: child})
}

func (g *generator) processImport(n *sitter.Node) {
	path := parser.Text(n, g.source)
	span := parser.NodeSpan(0, n)
	stable, _ := lang.StableID(g.filePath, ir.KindExternalModule, path, "import")
	target := g.doc.AddNode(ir.Node{
		Kind:     ir.KindExternalModule,
		Name:     path,
		FQN:      path,
		FilePath: g.filePath,
		Span:     span,
		Language: "java",
		StableID: stable,
	})
	g.doc.AddEdge(ir.Edge{Kind: ir.EdgeImports, SourceID: g.fileID, TargetID: target, Span: span, HasSpan: true})
}

func (g *generator) processClass(classNode *sitter.Node) {
	nameNode := classNode.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := parser.Text(nameNode, g.source)
	fqn := g.pkgName + "." + className

	contentHash, _ := lang.ContentHash([]byte(parser.Text(classNode, g.source)))
	stable, _ := lang.StableID(g.filePath, ir.KindClass, fqn, structureSignature(classNode))
	classID := g.doc.AddNode(ir.Node{
		Kind:        ir.KindClass,
		Name:        className,
		FQN:         fqn,
		FilePath:    g.filePath,
		Span:        parser.NodeSpan(0, classNode),
		Language:    "java",
		StableID:    stable,
		ContentHash: contentHash,
	})
	g.contains(g.fileID, classID)

	if superclass := classNode.ChildByFieldName("superclass"); superclass != nil {
		g.addTypeEdge(ir.EdgeInherits, classID, parser.Text(superclass, g.source), superclass)
	}
	if interfaces := classNode.ChildByFieldName("interfaces"); interfaces != nil {
		for _, typeNode := range findNodesByType(interfaces, "type_identifier") {
			g.addTypeEdge(ir.EdgeImplements, classID, parser.Text(typeNode, g.source), typeNode)
		}
	}

	body := classNode.ChildByFieldName("body")
	if body == nil {
		return
	}

	for _, fieldNode := range findNodesByType(body, "field_declaration") {
		g.processField(classID, fieldNode, fqn)
	}
	for _, methodNode := range findNodesByType(body, "method_declaration") {
		g.processMethod(classID, methodNode, fqn)
	}
	for _, ctorNode := range findNodesByType(body, "constructor_declaration") {
		g.processMethod(classID, ctorNode, fqn)
	}
}

func (g *generator) addTypeEdge(kind ir.EdgeKind, sourceID ir.NodeID, typeName string, n *sitter.Node) {
	if typeName == "" {
		return
	}
	span := parser.NodeSpan(0, n)
	stable, _ := lang.StableID(g.filePath, ir.KindExternalType, typeName, "type-ref")
	target := g.doc.AddNode(ir.Node{
		Kind: ir.KindExternalType, Name: typeName, FQN: typeName,
		FilePath: g.filePath, Span: span, Language: "java", StableID: stable,
	})
	g.doc.AddEdge(ir.Edge{Kind: kind, SourceID: sourceID, TargetID: target, Span: span, HasSpan: true})
}

func (g *generator) processField(classID ir.NodeID, fieldNode *sitter.Node, classFQN string) {
	for _, declarator := range findNodesByType(fieldNode, "variable_declarator") {
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := parser.Text(nameNode, g.source)
		fqn := classFQN + "." + name
		stable, _ := lang.StableID(g.filePath, ir.KindField, fqn, "field")
		id := g.doc.AddNode(ir.Node{
			Kind: ir.KindField, Name: name, FQN: fqn,
			FilePath: g.filePath, Span: parser.NodeSpan(0, fieldNode), Language: "java", StableID: stable,
		})
		g.contains(classID, id)
	}
}

func (g *generator) processMethod(classID ir.NodeID, methodNode *sitter.Node, classFQN string) {
	nameNode := methodNode.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.Text(nameNode, g.source)
	fqn := classFQN + "." + name
	contentHash, _ := lang.ContentHash([]byte(parser.Text(methodNode, g.source)))
	stable, _ := lang.StableID(g.filePath, ir.KindMethod, fqn, structureSignature(methodNode))

	methodID := g.doc.AddNode(ir.Node{
		Kind:        ir.KindMethod,
		Name:        name,
		FQN:         fqn,
		FilePath:    g.filePath,
		Span:        parser.NodeSpan(0, methodNode),
		Language:    "java",
		StableID:    stable,
		ContentHash: contentHash,
		BodySpan:    parser.NodeSpan(0, methodNode),
		HasBodySpan: true,
	})
	g.contains(classID, methodID)

	params := methodNode.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	for _, paramNode := range findNodesByType(params, "formal_parameter") {
		paramName := paramNode.ChildByFieldName("name")
		if paramName == nil {
			continue
		}
		name := parser.Text(paramName, g.source)
		paramFQN := fqn + ":" + name
		stable, _ := lang.StableID(g.filePath, ir.KindVariable, paramFQN, "parameter")
		id := g.doc.AddNode(ir.Node{
			Kind: ir.KindVariable, Name: name, FQN: paramFQN,
			FilePath: g.filePath, Span: parser.NodeSpan(0, paramNode), Language: "java", StableID: stable,
		})
		g.contains(methodID, id)
	}
}

// processCalls emits a shallow CALLS edge per method_invocation, resolved to
// an ExternalFunction placeholder, matching lang/golang's approach; no later
// step, symbolgraph.Build included, rewrites the placeholder.
func (g *generator) processCalls(root *sitter.Node) {
	for _, call := range findNodesByType(root, "method_invocation") {
		nameNode := call.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		callee := parser.Text(nameNode, g.source)
		span := parser.NodeSpan(0, call)
		stable, _ := lang.StableID(g.filePath, ir.KindExternalFunc, callee, "call-target")
		target := g.doc.AddNode(ir.Node{
			Kind: ir.KindExternalFunc, Name: callee, FQN: callee,
			FilePath: g.filePath, Span: span, Language: "java", StableID: stable,
		})
		g.doc.AddEdge(ir.Edge{Kind: ir.EdgeCalls, SourceID: g.fileID, TargetID: target, Span: span, HasSpan: true})
	}
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

// findNodeByType and findNodesByType are the teacher's own helpers
// (`analyzer/java_analyzer.go`), kept verbatim in shape since they're
// already tree-sitter-generic.
func findNodeByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node.Type() == nodeType {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			if found := findNodeByType(child, nodeType); found != nil {
				return found
			}
		}
	}
	return nil
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
	walk(node)
	return out
}
