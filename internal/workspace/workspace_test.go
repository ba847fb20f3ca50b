package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

func modDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "Name = Test Mod\n")
	return root
}

func TestFindWalksUp(t *testing.T) {
	root := modDir(t)
	nested := filepath.Join(root, "map", "patch")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}

	ws, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if ws.Root != root {
		t.Errorf("Root = %q, expected %q", ws.Root, root)
	}
}

func TestFindFromFilePath(t *testing.T) {
	root := modDir(t)
	file := filepath.Join(root, "map", "patch", "x.mpat")
	writeFile(t, file, "#export $X\n")

	ws, err := Find(file)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if ws.Root != root {
		t.Errorf("Root = %q, expected %q", ws.Root, root)
	}
}

func TestFindWithoutConfig(t *testing.T) {
	_, err := Find(t.TempDir())
	if err == nil {
		t.Fatal("Find() expected error, got nil")
	}
	if !srerror.HasCode(err, srerror.CodeNoWorkspace) {
		t.Errorf("error code = %v, expected %v", srerror.GetCode(err), srerror.CodeNoWorkspace)
	}
}

func TestGlobalPatchFiles(t *testing.T) {
	root := modDir(t)
	writeFile(t, filepath.Join(root, "globals", "patch", "b.patch"), "")
	writeFile(t, filepath.Join(root, "globals", "patch", "a.patch"), "")
	writeFile(t, filepath.Join(root, "globals", "patch", "notes.txt"), "")

	ws := &Workspace{Root: root}
	files := ws.GlobalPatchFiles()

	want := []string{
		filepath.Join(root, "globals", "patch", "a.patch"),
		filepath.Join(root, "globals", "patch", "b.patch"),
	}
	if len(files) != len(want) {
		t.Fatalf("len(files) = %d, expected %d: %v", len(files), len(want), files)
	}
	for i, path := range want {
		if files[i] != path {
			t.Errorf("files[%d] = %q, expected %q", i, files[i], path)
		}
	}
}

func TestSourceFiles(t *testing.T) {
	root := modDir(t)
	writeFile(t, filepath.Join(root, "map", "patch", "x.mpat"), "")
	writeFile(t, filepath.Join(root, "map", "src", "x.mscr"), "")
	writeFile(t, filepath.Join(root, "battle", "y.bpat"), "")
	writeFile(t, filepath.Join(root, "globals", "patch", "g.patch"), "")
	writeFile(t, filepath.Join(root, "README.md"), "")
	writeFile(t, filepath.Join(root, ".git", "config"), "")
	writeFile(t, filepath.Join(root, "build", "out.mpat"), "")
	writeFile(t, filepath.Join(root, ".gitignore"), "build/\n")

	ws := &Workspace{Root: root}
	files, err := ws.SourceFiles()
	if err != nil {
		t.Fatalf("SourceFiles() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "battle", "y.bpat"),
		filepath.Join(root, "globals", "patch", "g.patch"),
		filepath.Join(root, "map", "patch", "x.mpat"),
		filepath.Join(root, "map", "src", "x.mscr"),
	}
	if len(files) != len(want) {
		t.Fatalf("len(files) = %d, expected %d: %v", len(files), len(want), files)
	}
	for i, path := range want {
		if files[i] != path {
			t.Errorf("files[%d] = %q, expected %q", i, files[i], path)
		}
	}
}

func TestCounterparts(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		variant func(string) (string, bool)
		want    string
		ok      bool
	}{
		{
			name:    "world patch to source",
			path:    filepath.Join("map", "patch", "x.mpat"),
			variant: SourceCounterpart,
			want:    filepath.Join("map", "src", "x.mscr"),
			ok:      true,
		},
		{
			name:    "battle patch to source",
			path:    filepath.Join("battle", "patch", "y.bpat"),
			variant: SourceCounterpart,
			want:    filepath.Join("battle", "src", "y.bscr"),
			ok:      true,
		},
		{
			name:    "world patch to generated",
			path:    filepath.Join("map", "patch", "x.mpat"),
			variant: GeneratedCounterpart,
			want:    filepath.Join("map", "gen", "x.mscr"),
			ok:      true,
		},
		{
			name:    "absolute path",
			path:    "/mod/area/patch/z.mpat",
			variant: SourceCounterpart,
			want:    "/mod/area/src/z.mscr",
			ok:      true,
		},
		{
			name:    "innermost patch segment wins",
			path:    filepath.Join("patch", "deep", "patch", "x.mpat"),
			variant: SourceCounterpart,
			want:    filepath.Join("patch", "deep", "src", "x.mscr"),
			ok:      true,
		},
		{
			name:    "no patch segment",
			path:    filepath.Join("map", "src", "x.mpat"),
			variant: SourceCounterpart,
			ok:      false,
		},
		{
			name:    "global patch has no counterpart",
			path:    filepath.Join("globals", "patch", "g.patch"),
			variant: SourceCounterpart,
			ok:      false,
		},
		{
			name:    "script file has no counterpart",
			path:    filepath.Join("map", "patch", "x.mscr"),
			variant: SourceCounterpart,
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.variant(tt.path)
			if ok != tt.ok {
				t.Fatalf("ok = %v, expected %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("counterpart = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestIsPatchFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"map/patch/x.mpat", true},
		{"battle/patch/y.bpat", true},
		{"map/src/x.mscr", false},
		{"globals/patch/g.patch", false},
		{"readme.md", false},
	}

	for _, tt := range tests {
		if got := IsPatchFile(tt.path); got != tt.want {
			t.Errorf("IsPatchFile(%q) = %v, expected %v", tt.path, got, tt.want)
		}
	}
}

func TestInPatchTree(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"map/patch/x.mpat", true},
		{"globals/patch/g.patch", true},
		{"map/src/x.mscr", false},
		{"patches/x.mpat", false},
	}

	for _, tt := range tests {
		if got := InPatchTree(tt.path); got != tt.want {
			t.Errorf("InPatchTree(%q) = %v, expected %v", tt.path, got, tt.want)
		}
	}
}
