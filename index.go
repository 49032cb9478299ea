package codegraph

import (
	"context"
	"database/sql"
	"time"

	"github.com/viant/codegraph/internal/codegraph/fusion"
	"github.com/viant/codegraph/internal/codegraph/index"
)

// IndexSession wires the §4.13 multi-index write path and the §4.15 fusion
// planner behind §6's Index API. One IndexSession owns one sqlite-backed
// index file for one (repo, snapshot).
type IndexSession struct {
	db         *sql.DB
	repoID     string
	snapshotID string

	lexical *index.LexicalWriter
	symbol  *index.SymbolWriter
	fuzzy   *index.FuzzyWriter
	domain  *index.DomainWriter
	vector  *index.VectorWriter
	planner *fusion.Planner
}

// OpenIndexSession opens (creating if absent) the sqlite index file at path
// and migrates every writer's schema, §4.13.
func OpenIndexSession(path, repoID, snapshotID string) (*IndexSession, error) {
	db, err := index.Open(path)
	if err != nil {
		return nil, err
	}
	if err := index.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &IndexSession{db: db, repoID: repoID, snapshotID: snapshotID, planner: fusion.NewPlanner()}
	s.lexical = &index.LexicalWriter{DB: db, RepoID: repoID, SnapshotID: snapshotID}
	s.symbol = &index.SymbolWriter{DB: db, RepoID: repoID, SnapshotID: snapshotID}
	s.fuzzy = &index.FuzzyWriter{DB: db, RepoID: repoID, SnapshotID: snapshotID}
	s.domain = &index.DomainWriter{
		DB: db, RepoID: repoID, SnapshotID: snapshotID,
		Rules:    defaultDomainRules(),
		ChunkIDs: func(f index.File) []string { return []string{f.Path} },
	}
	s.vector = &index.VectorWriter{DB: db, RepoID: repoID, SnapshotID: snapshotID}
	return s, nil
}

// Close releases the underlying sqlite connection.
func (s *IndexSession) Close() error { return s.db.Close() }

func defaultDomainRules() []index.DomainRule {
	return []index.DomainRule{
		{Tag: "test", Match: func(f index.File) bool { return hasSuffixAny(f.Path, "_test.go", ".test.ts", ".test.tsx", ".spec.ts") }},
		{Tag: "generated", Match: func(f index.File) bool { return containsBytes(f.Content, []byte("DO NOT EDIT")) }},
	}
}

func hasSuffixAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if len(s) >= len(suf) && s[len(s)-len(suf):] == suf {
			return true
		}
	}
	return false
}

func containsBytes(haystack, needle []byte) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return true
		}
	}
	return false
}

// IndexFilesResult is §6's `index_files` return shape.
type IndexFilesResult struct {
	SuccessCount int
	TotalFiles   int
	DurationSecs float64
	Throughput   float64 // files/sec
	Failures     []IndexFailure
}

// IndexFailure is one `(path, error)` pair from a failed index_files call.
type IndexFailure struct {
	Path  string
	Error string
}

// IndexFiles implements §6's `index_files(files, fail_fast=false) →
// {success_count, total_files, duration_secs, throughput, failures}`. It
// fans the batch out to every writer (lexical, symbol, fuzzy, domain,
// vector); per §4.13/§7 each writer classifies its own failures, and a
// writer with an unavailable backing store (e.g. vector without the
// sqlite_vec build tag) degrades by skipping rather than failing the file.
func (s *IndexSession) IndexFiles(ctx context.Context, files []index.File, failFast bool) IndexFilesResult {
	start := time.Now()
	writers := []index.Writer{s.lexical, s.symbol, s.fuzzy, s.domain, s.vector}

	failedPaths := map[string]string{}
	succeededPaths := map[string]bool{}
	for _, path := range pathsOf(files) {
		succeededPaths[path] = true
	}

	for _, w := range writers {
		res, err := w.IndexFiles(ctx, files)
		if err != nil {
			for _, f := range files {
				failedPaths[f.Path] = err.Error()
				delete(succeededPaths, f.Path)
			}
			if failFast {
				break
			}
			continue
		}
		for _, f := range res.Failed {
			failedPaths[f.Path] = f.Error.Error()
			delete(succeededPaths, f.Path)
		}
		if failFast && len(res.Failed) > 0 {
			break
		}
	}

	elapsed := time.Since(start)
	result := IndexFilesResult{
		SuccessCount: len(succeededPaths),
		TotalFiles:   len(files),
		DurationSecs: elapsed.Seconds(),
	}
	if elapsed.Seconds() > 0 {
		result.Throughput = float64(len(files)) / elapsed.Seconds()
	}
	for path, msg := range failedPaths {
		result.Failures = append(result.Failures, IndexFailure{Path: path, Error: msg})
	}
	return result
}

func pathsOf(files []index.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// SearchHit is one row of §6's `search` response:
// `{chunk_id, file_path, score, content, ...}`. SearchHit carries no
// file_path or content; this session only knows chunk_id, the
// fused/priority score and the contributing sources, since content storage
// is outside the multi-index write path (§4.13 indexes point at chunks, a
// chunk store owns their bytes).
type SearchHit struct {
	ChunkID string
	Score   float64
	Sources []fusion.Source
}

// Search implements §6's `search(query, limit, filters?) →
// [{chunk_id, file_path, score, content, ...}]`. filters, when non-empty,
// restrict results to chunks tagged with every named domain tag (§4.13
// "domain (rule-based tags)").
func (s *IndexSession) Search(ctx context.Context, query string, limit int, filters []string) ([]SearchHit, error) {
	bySource := map[fusion.Source][]index.ScoredChunk{}

	lex, err := s.lexical.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	bySource[fusion.SourceLexical] = lex

	fuzzy, err := s.fuzzy.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	bySource[fusion.SourceFuzzy] = fuzzy

	signals := fusion.MergeScoredChunks(bySource)
	ranked := s.planner.Fuse(signals, fusion.Weights{Lexical: 1, Fuzzy: 0.6})

	out := make([]SearchHit, 0, len(ranked))
	for _, r := range ranked {
		if len(filters) > 0 {
			tags, err := s.domain.TagsFor(ctx, r.ChunkID)
			if err != nil {
				return nil, err
			}
			if !hasAllTags(tags, filters) {
				continue
			}
		}
		out = append(out, SearchHit{ChunkID: r.ChunkID, Score: r.PriorityScore, Sources: r.Sources})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func hasAllTags(tags, want []string) bool {
	have := make(map[string]bool, len(tags))
	for _, t := range tags {
		have[t] = true
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}
