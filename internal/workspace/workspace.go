// Package workspace locates a Star Rod mod directory and maps the
// on-disk layout: global patch files, patch/source/generated
// counterparts, and the set of parseable source files.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// ConfigFileName marks the root of a mod directory.
const ConfigFileName = "mod.cfg"

// Extensions of documents the engine parses. `.patch` files are the
// cross-cutting global patches; the others pair patch and script
// dialect files for the world and battle families.
const (
	ExtWorldScript  = ".mscr"
	ExtWorldPatch   = ".mpat"
	ExtBattleScript = ".bscr"
	ExtBattlePatch  = ".bpat"
	ExtGlobalPatch  = ".patch"
)

// Workspace is a located mod directory.
type Workspace struct {
	Root string
}

// Find walks from start up through its parents until it finds a
// directory containing mod.cfg. start may be a file or a directory.
func Find(start string) (*Workspace, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, srerror.Wrapf(err, "cannot resolve %q", start).
			WithCode(srerror.CodeNoWorkspace).
			WithOperation("workspace.Find")
	}

	dir := abs
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil && !info.IsDir() {
			return &Workspace{Root: dir}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, srerror.Newf("no %s found above %q", ConfigFileName, start).
				WithCode(srerror.CodeNoWorkspace).
				WithOperation("workspace.Find")
		}
		dir = parent
	}
}

// GlobalPatchFiles lists globals/patch/*.patch in sorted order.
func (w *Workspace) GlobalPatchFiles() []string {
	paths, err := filepath.Glob(filepath.Join(w.Root, "globals", "patch", "*"+ExtGlobalPatch))
	if err != nil {
		return nil
	}
	return paths
}

// SourceFiles walks the workspace collecting every patch and script
// file, skipping dot directories and anything the root .gitignore
// excludes. Paths come back absolute and sorted.
func (w *Workspace) SourceFiles() ([]string, error) {
	gi := loadGitignore(w.Root)

	var results []string
	err := filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries contribute nothing
		}
		name := d.Name()

		if d.IsDir() {
			if path == w.Root {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if !IsSourceFile(name) {
			return nil
		}

		rel, err := filepath.Rel(w.Root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, srerror.Wrap(err, "workspace walk failed").
			WithCode(srerror.CodeIO).
			WithOperation("workspace.SourceFiles")
	}

	sort.Strings(results)
	return results, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// IsSourceFile reports whether a file name carries one of the parsed
// extensions.
func IsSourceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtWorldScript, ExtWorldPatch, ExtBattleScript, ExtBattlePatch, ExtGlobalPatch:
		return true
	}
	return false
}

// IsPatchFile reports whether a path is a world or battle patch file,
// the kind that has source and generated counterparts.
func IsPatchFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtWorldPatch, ExtBattlePatch:
		return true
	}
	return false
}

// InPatchTree reports whether any path segment is named "patch".
func InPatchTree(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "patch" {
			return true
		}
	}
	return false
}

// patchExtToScript pairs each patch extension with its script twin.
var patchExtToScript = map[string]string{
	ExtWorldPatch:  ExtWorldScript,
	ExtBattlePatch: ExtBattleScript,
}

// SourceCounterpart maps a patch file to its hand-written script twin:
// the innermost "patch" segment becomes "src" and the extension swaps
// pat for scr. ok is false for paths without both a patch extension
// and a patch segment.
func SourceCounterpart(path string) (string, bool) {
	return counterpart(path, "src")
}

// GeneratedCounterpart maps a patch file to its generated script twin
// under "gen". Same shape as SourceCounterpart.
func GeneratedCounterpart(path string) (string, bool) {
	return counterpart(path, "gen")
}

func counterpart(path, variant string) (string, bool) {
	scriptExt, ok := patchExtToScript[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", false
	}

	dir, file := filepath.Split(filepath.Clean(path))
	segments := strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/")

	last := -1
	for i, segment := range segments {
		if segment == "patch" {
			last = i
		}
	}
	if last < 0 {
		return "", false
	}
	segments[last] = variant

	name := strings.TrimSuffix(file, filepath.Ext(file)) + scriptExt
	return filepath.Join(filepath.FromSlash(strings.Join(segments, "/")), name), true
}
