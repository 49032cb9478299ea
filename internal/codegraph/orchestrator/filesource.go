package orchestrator

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// File pairs a Plan.Files path with the bytes the build pipeline needs to
// parse it, the orchestrator's own read side of `Plan.Files` (a Run.Execute
// only resolves *which* paths changed; something still has to fetch their
// content before L1 generation can run).
type File struct {
	Path    string
	Content []byte
}

// FileSource reads the working-tree content of a Plan's changed files.
// Backed by afs.Service rather than os.ReadFile directly so the same
// orchestrator works uniformly over local disk, in-memory, and
// remote-URL-addressed repositories, exactly as inspector/repository and
// analyzer.Analyzer do in the teacher (SPEC_FULL.md §10 "Filesystem
// abstraction").
type FileSource struct {
	FS       afs.Service
	RepoRoot string
}

// NewFileSource builds a FileSource backed by the default afs.Service.
func NewFileSource(repoRoot string) *FileSource {
	return &FileSource{FS: afs.New(), RepoRoot: repoRoot}
}

// Read fetches the content of every path in paths (typically Plan.Files),
// relative to RepoRoot. A single unreadable file does not abort the whole
// read: it is reported back via the errs map keyed by path, mirroring
// §7's per-file error isolation elsewhere in this engine (Build's
// Diagnostics, the index writers' per-file retry/classify loop).
func (s *FileSource) Read(ctx context.Context, paths []string) ([]File, map[string]error) {
	files := make([]File, 0, len(paths))
	errs := make(map[string]error)
	for _, p := range paths {
		loc := url.Join(s.RepoRoot, p)
		content, err := s.FS.DownloadWithURL(ctx, loc)
		if err != nil {
			errs[p] = fmt.Errorf("orchestrator: read %s: %w", p, err)
			continue
		}
		files = append(files, File{Path: p, Content: content})
	}
	return files, errs
}
