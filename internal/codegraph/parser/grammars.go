package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsgolang "github.com/smacker/go-tree-sitter/golang"
	tsjava "github.com/smacker/go-tree-sitter/java"
	tsjavascript "github.com/smacker/go-tree-sitter/javascript"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/tsx"
)

// goGrammar, javaGrammar, jsxGrammar implement Grammar for the three
// languages lang/golang, lang/java, lang/jsx analyze, mirroring the
// teacher pack's one-Config-struct-per-language convention
// (`providers/golang/config.go`, `providers/java/config.go` in the pack).

type goGrammar struct{}

func (goGrammar) Language() string           { return "go" }
func (goGrammar) Extensions() []string       { return []string{".go"} }
func (goGrammar) SitterLanguage() *sitter.Language { return tsgolang.GetLanguage() }

type javaGrammar struct{}

func (javaGrammar) Language() string           { return "java" }
func (javaGrammar) Extensions() []string       { return []string{".java"} }
func (javaGrammar) SitterLanguage() *sitter.Language { return tsjava.GetLanguage() }

type javascriptGrammar struct{}

func (javascriptGrammar) Language() string           { return "javascript" }
func (javascriptGrammar) Extensions() []string       { return []string{".js", ".jsx"} }
func (javascriptGrammar) SitterLanguage() *sitter.Language { return tsjavascript.GetLanguage() }

// jsxGrammar uses the TSX grammar even for plain JSX: TSX is a strict
// superset (JSX plus optional type annotations), so it parses untyped
// JSX/JS without complaint and lets lang/jsx share one grammar for both.
type jsxGrammar struct{}

func (jsxGrammar) Language() string           { return "jsx" }
func (jsxGrammar) Extensions() []string       { return []string{".jsx", ".tsx"} }
func (jsxGrammar) SitterLanguage() *sitter.Language { return tstypescript.GetLanguage() }

// Go, Java, JSX are the Grammar singletons lang/golang, lang/java,
// lang/jsx bind their Adapter to.
var (
	Go   Grammar = goGrammar{}
	Java Grammar = javaGrammar{}
	JS   Grammar = javascriptGrammar{}
	JSX  Grammar = jsxGrammar{}
)
