package provenance

import (
	"encoding/json"
	"time"
)

// Provenance is the artifact of §4.11/§6: the tuple of fingerprints and
// version markers identifying exactly how an IR Document was produced. Two
// runs with equal input and equal config produce byte-identical Provenance
// except for BuildTimestamp (§6 "Provenance artifact format").
type Provenance struct {
	InputFingerprint      string    `json:"input_fingerprint"`
	ConfigFingerprint     string    `json:"config_fingerprint"`
	DependencyFingerprint string    `json:"dependency_fingerprint"`
	BuilderVersion        string    `json:"builder_version"`
	BuildTimestamp        time.Time `json:"build_timestamp"`
	NodeSortKey           string    `json:"node_sort_key"`
	EdgeSortKey           string    `json:"edge_sort_key"`
	ParallelSeed          int64     `json:"parallel_seed"`
}

// NodeSortKeyDescription and EdgeSortKeyDescription are the fixed,
// human-readable descriptions of the total order enforced by
// ir.Document.EnforceTotalOrdering (§4.11), recorded verbatim in every
// Provenance artifact so a reader can audit determinism without inspecting
// code.
const (
	NodeSortKeyDescription = "file_path,kind,start_line,end_line,local_seq"
	EdgeSortKeyDescription = "kind,source_id,target_id,local_seq"
)

// CanonicalJSON marshals p with sorted map keys (guaranteed by
// encoding/json) and no timestamp-dependent indirection beyond the
// BuildTimestamp field itself, per §6 "Canonical JSON with sorted keys".
func (p Provenance) CanonicalJSON() ([]byte, error) {
	return json.Marshal(p)
}

// EqualModuloTimestamp reports whether two provenance artifacts are
// identical except for BuildTimestamp — the property required by §6 and
// exercised by the determinism scenario of §8 S5.
func (p Provenance) EqualModuloTimestamp(o Provenance) bool {
	a := p
	b := o
	a.BuildTimestamp = time.Time{}
	b.BuildTimestamp = time.Time{}
	return a == b
}
