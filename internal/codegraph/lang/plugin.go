// Package lang defines the LanguagePlugin contract every per-language
// generator (lang/golang, lang/java, lang/jsx) implements, plus the
// fingerprint helpers shared across them, §4.2/§4.3.
package lang

import (
	"fmt"

	"github.com/minio/highwayhash"

	"github.com/viant/codegraph/internal/codegraph/ir"
	"github.com/viant/codegraph/internal/codegraph/parser"
)

// Plugin turns one source file's parse tree into Structural IR (L1) nodes
// and edges inside doc. Each language package (lang/golang, lang/java,
// lang/jsx) provides exactly one Plugin.
type Plugin interface {
	// Language is the ir.Node.Language value this plugin populates.
	Language() string
	// Extensions lists the file extensions this plugin claims.
	Extensions() []string
	// Grammar is the parser.Grammar this plugin's Adapter parses with.
	Grammar() parser.Grammar
	// Generate walks tree and appends the file's nodes/edges to doc,
	// returning the NodeID of the KindFile node it created.
	Generate(doc *ir.Document, filePath string, source []byte, tree *parser.Tree) (ir.NodeID, error)
}

// fingerprintKey is the teacher's fixed HighwayHash key
// (`inspector/graph/hash.go`), reused verbatim so stable_id/content_hash
// values are stable across repeated builds of the same content.
var fingerprintKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// hash64 returns the HighwayHash-64 digest of data as a hex string, the
// fast non-cryptographic digest SPEC_FULL.md §10 reserves for internal
// stable_id/content_hash values (as opposed to the SHA256 fingerprints of
// §4.11, which are externally-visible provenance artifacts).
func hash64(data []byte) (string, error) {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// StableID hashes (file_path, kind, fqn, body-structure) per §3, so a
// rename (new file_path or fqn) yields a different id. Passing a structural
// summary (e.g. tree-sitter node type sequence) as bodyStructure rather than
// the raw source text keeps the id unchanged across body edits that keep
// the shape.
func StableID(filePath string, kind ir.Kind, fqn string, bodyStructure string) (string, error) {
	return hash64([]byte(filePath + "|" + string(kind) + "|" + fqn + "|" + bodyStructure))
}

// ContentHash hashes a node's canonicalized semantic body (the raw source
// span text, since at L1 no further canonicalization has happened yet).
func ContentHash(body []byte) (string, error) {
	return hash64(body)
}
