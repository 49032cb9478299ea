package golang

import (
	"context"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// ModuleResolver classifies a Go import path as internal (part of the
// repository under analysis) or external (standard library/third-party),
// grounded on inspector/repository/detector.go's extractGoModuleName, which
// pairs afs (reading go.mod off whatever storage backs the repository) with
// golang.org/x/mod/modfile (parsing it) to recover a module's declared
// import path.
type ModuleResolver struct {
	ModulePath string
}

// NewModuleResolver reads go.mod from goModURL (an afs-addressable URL —
// local path, `mem://`, or any other afs-registered scheme) via fs and
// parses its module directive.
func NewModuleResolver(ctx context.Context, fs afs.Service, goModURL string) (*ModuleResolver, error) {
	content, err := fs.DownloadWithURL(ctx, goModURL)
	if err != nil {
		return nil, err
	}
	mod, err := modfile.ParseLax(goModURL, content, nil)
	if err != nil {
		return nil, err
	}
	modulePath := ""
	if mod.Module != nil {
		modulePath = mod.Module.Mod.Path
	}
	return &ModuleResolver{ModulePath: modulePath}, nil
}

// Classify reports whether importPath belongs to this repository's own
// module (its FQN-qualified package tree) or is external to it (standard
// library or a third-party dependency).
func (r *ModuleResolver) Classify(importPath string) string {
	if r == nil || r.ModulePath == "" {
		return "unknown"
	}
	if importPath == r.ModulePath || strings.HasPrefix(importPath, r.ModulePath+"/") {
		return "internal"
	}
	return "external"
}
