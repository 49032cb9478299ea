package taint

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// matchClauseSpec/atomSpec mirror the rule-file field names of §6
// (snake_case YAML keys), decoded with KnownFields(true) so an unknown
// field is rejected rather than silently ignored, per §6 "Strict
// validation: unknown fields are rejected".
type matchClauseSpec struct {
	BaseType        string            `yaml:"base_type,omitempty"`
	BaseTypePattern string            `yaml:"base_type_pattern,omitempty"`
	Call            string            `yaml:"call,omitempty"`
	CallPattern     string            `yaml:"call_pattern,omitempty"`
	Read            bool              `yaml:"read,omitempty"`
	Write           bool              `yaml:"write,omitempty"`
	Args            []int             `yaml:"args,omitempty"`
	Kwargs          []string          `yaml:"kwargs,omitempty"`
	FromArgs        []int             `yaml:"from_args,omitempty"`
	To              string            `yaml:"to,omitempty"`
	Scope           string            `yaml:"scope,omitempty"`
	Constraints     map[string]string `yaml:"constraints,omitempty"`
}

type atomSpec struct {
	ID          string            `yaml:"id"`
	Kind        string            `yaml:"kind"`
	Match       []matchClauseSpec `yaml:"match"`
	CWE         []string          `yaml:"cwe,omitempty"`
	OWASP       string            `yaml:"owasp,omitempty"`
	Frameworks  []string          `yaml:"frameworks,omitempty"`
	Severity    string            `yaml:"severity,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Scope       string            `yaml:"scope,omitempty"`
	AtomPriority string           `yaml:"atom_priority,omitempty"`
}

// LoadRuleFile parses a YAML list of atom specs per §6's "Rule file
// format", strictly rejecting unknown fields, and validates every atom
// before returning. The first invalid atom aborts the load with a
// descriptive error naming its id.
func LoadRuleFile(content []byte) ([]Atom, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var specs []atomSpec
	if err := dec.Decode(&specs); err != nil {
		return nil, fmt.Errorf("taint: parse rule file: %w", err)
	}

	atoms := make([]Atom, 0, len(specs))
	for _, s := range specs {
		atom, err := s.toAtom()
		if err != nil {
			return nil, err
		}
		if err := atom.Validate(); err != nil {
			return nil, err
		}
		if atom.Kind == KindSink && atom.Severity == "" {
			atom.Severity = SeverityMedium
		}
		atoms = append(atoms, atom)
	}
	return atoms, nil
}

func (s atomSpec) toAtom() (Atom, error) {
	kind := AtomKind(s.Kind)
	switch kind {
	case KindSource, KindSink, KindSanitizer, KindPropagator, KindPassthrough:
	default:
		return Atom{}, fmt.Errorf("taint: atom %q: unknown kind %q", s.ID, s.Kind)
	}

	priority := PriorityNormal
	switch s.AtomPriority {
	case "", string(PriorityNormal):
		priority = PriorityNormal
	case string(PriorityLow):
		priority = PriorityLow
	case string(PriorityHigh):
		priority = PriorityHigh
	default:
		return Atom{}, fmt.Errorf("taint: atom %q: unknown atom_priority %q", s.ID, s.AtomPriority)
	}

	match := make([]MatchClause, 0, len(s.Match))
	for _, m := range s.Match {
		match = append(match, MatchClause{
			BaseType:        m.BaseType,
			BaseTypePattern: m.BaseTypePattern,
			Call:            m.Call,
			CallPattern:     m.CallPattern,
			Read:            m.Read,
			Write:           m.Write,
			Args:            m.Args,
			Kwargs:          m.Kwargs,
			FromArgs:        m.FromArgs,
			To:              m.To,
			Scope:           m.Scope,
			Constraints:     m.Constraints,
		})
	}

	return Atom{
		ID:          s.ID,
		Kind:        kind,
		Match:       match,
		CWE:         s.CWE,
		OWASP:       s.OWASP,
		Frameworks:  s.Frameworks,
		Severity:    Severity(s.Severity),
		Tags:        s.Tags,
		Description: s.Description,
		Scope:       SanitizerScope(s.Scope),
		Priority:    priority,
	}, nil
}
