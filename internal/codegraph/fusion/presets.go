package fusion

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Preset is one versioned weight vector bound to a query intent, §4.15 "A
// per-intent weight vector ... is loaded from a versioned preset store".
type Preset struct {
	Intent  string  `yaml:"intent"`
	Version int     `yaml:"version"`
	Weights Weights `yaml:"weights"`
}

// presetsFile is the on-disk shape presets load from (SPEC_FULL.md §12
// shadow-mode A/B routing supplement: each intent may carry a stable and a
// treatment version).
type presetsFile struct {
	Presets []struct {
		Intent    string  `yaml:"intent"`
		Stable    Preset  `yaml:"stable"`
		Treatment *Preset `yaml:"treatment,omitempty"`
		// TreatmentFraction is the fraction of queries routed to
		// Treatment, in [0,1].
		TreatmentFraction float64 `yaml:"treatment_fraction"`
	} `yaml:"presets"`
}

// PresetEntry pairs an intent's stable preset with an optional treatment
// variant and the routing fraction between them.
type PresetEntry struct {
	Intent            string
	Stable            Preset
	Treatment         *Preset
	TreatmentFraction float64
}

// PresetStore is the versioned preset store: a read-mostly, mutex-guarded
// map loaded from YAML, matching the teacher pack's config-loading
// convention (SPEC_FULL.md §10 config).
type PresetStore struct {
	mu      sync.RWMutex
	presets map[string]PresetEntry
}

// NewPresetStore builds an empty store; use LoadYAML or Put to populate it.
func NewPresetStore() *PresetStore {
	return &PresetStore{presets: map[string]PresetEntry{}}
}

// LoadYAML parses a presets document and replaces the store's contents.
func (s *PresetStore) LoadYAML(data []byte) error {
	var doc presetsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("fusion: parse presets: %w", err)
	}
	presets := make(map[string]PresetEntry, len(doc.Presets))
	for _, p := range doc.Presets {
		presets[p.Intent] = PresetEntry{
			Intent:            p.Intent,
			Stable:            p.Stable,
			Treatment:         p.Treatment,
			TreatmentFraction: p.TreatmentFraction,
		}
	}
	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()
	return nil
}

// Put installs or replaces a single intent's preset entry, for tests and
// programmatic setup without a YAML round-trip.
func (s *PresetStore) Put(entry PresetEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[entry.Intent] = entry
}

// Get returns the entry for intent, if one is configured.
func (s *PresetStore) Get(intent string) (PresetEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.presets[intent]
	return entry, ok
}

// Router picks between an intent's stable and treatment preset version,
// §4.15 "A/B routing allows a fraction of queries to use a treatment
// version".
type Router struct {
	Store *PresetStore
	// Rand returns a value in [0,1); overridable for deterministic tests.
	Rand func() float64
}

// NewRouter builds a Router against store using a real random source.
func NewRouter(store *PresetStore) *Router {
	return &Router{Store: store, Rand: defaultRand}
}

// RoutedPreset is the preset chosen for one query plus which arm served it,
// so callers can log shadow-mode comparisons (SPEC_FULL.md §12).
type RoutedPreset struct {
	Preset Preset
	Arm    string // "stable" or "treatment"
}

// Route selects stable or treatment weights for intent. Unknown intents
// fall back to an equal-weight Preset rather than erroring, since a query
// planner should degrade gracefully rather than refuse to search.
func (r *Router) Route(intent string) RoutedPreset {
	entry, ok := r.Store.Get(intent)
	if !ok {
		return RoutedPreset{Preset: fallbackPreset(intent), Arm: "stable"}
	}
	if entry.Treatment != nil && entry.TreatmentFraction > 0 {
		roll := r.Rand
		if roll == nil {
			roll = defaultRand
		}
		if roll() < entry.TreatmentFraction {
			return RoutedPreset{Preset: *entry.Treatment, Arm: "treatment"}
		}
	}
	return RoutedPreset{Preset: entry.Stable, Arm: "stable"}
}

func fallbackPreset(intent string) Preset {
	return Preset{
		Intent:  intent,
		Version: 0,
		Weights: Weights{Lexical: 0.2, Vector: 0.2, Symbol: 0.2, Fuzzy: 0.2, Domain: 0.2},
	}
}
