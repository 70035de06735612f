package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// writeTree creates files under a temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func relPaths(files []FileInfo) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWalk_BasicTraversal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":            "package main\n",
		"auth/middleware.go": "package auth\n",
		"utils.py":           "def f(): pass\n",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"auth/middleware.go", "main.go", "utils.py"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_FileInfoFields(t *testing.T) {
	root := writeTree(t, map[string]string{"lib/tool.rs": "fn main() {}\n"})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0]
	if f.Language != "rust" {
		t.Errorf("Language = %q, want rust", f.Language)
	}
	if f.Size != int64(len("fn main() {}\n")) {
		t.Errorf("Size = %d", f.Size)
	}
	if !filepath.IsAbs(f.Path) {
		t.Errorf("Path should be absolute, got %q", f.Path)
	}
}

func TestWalk_IncludeExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go":          "package a\n",
		"b.py":          "x = 1\n",
		"deep/nest/c.go": "package c\n",
		"deep/d_test.go": "package d\n",
	})

	files, err := Walk(WalkerConfig{
		RootDir: root,
		Include: []string{"**/*.go"},
		Exclude: []string{"*_test.go"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"a.go", "deep/nest/c.go"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_SkipsBinaryAndLargeFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"ok.txt":    "hello",
		"bin.dat":   "ab\x00cd",
		"large.txt": "0123456789",
	})

	files, err := Walk(WalkerConfig{RootDir: root, MaxFileSize: 8})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []string{"ok.txt"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_DefaultExcludeDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.js":              "1",
		"node_modules/lib/x.js":   "1",
		".git/config":             "1",
		".repoconvert/sandbox.db": "1",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []string{"src/app.js"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":    "*.log\nbuild-out/\n# comment\n",
		"keep.go":       "package k\n",
		"debug.log":     "x",
		"build-out/a.c": "int x;",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []string{".gitignore", "keep.go"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(WalkerConfig{RootDir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"main.py", "python"},
		{"app.js", "javascript"},
		{"Main.java", "java"},
		{"x.c", "c"},
		{"x.cpp", "c++"},
		{"x.cs", "c#"},
		{"server.go", "go"},
		{"x.rb", "ruby"},
		{"index.php", "php"},
		{"View.swift", "swift"},
		{"lib.rs", "rust"},
		{"SCRIPT.PY", "python"},
		{"dir/sub/file.go", "go"},
		{"README.md", "unknown"},
		{"Makefile", "unknown"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.file); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestMatchesInclude(t *testing.T) {
	if !MatchesInclude("any/file.txt", nil) {
		t.Error("empty include should match everything")
	}
	if !MatchesInclude("pkg/deep/x.go", []string{"**/*.go"}) {
		t.Error("expected ** pattern to match")
	}
	if MatchesInclude("x.py", []string{"*.go"}) {
		t.Error("*.go should not match x.py")
	}
}

func TestMatchesExclude(t *testing.T) {
	if MatchesExclude("x.go", nil) {
		t.Error("empty exclude should match nothing")
	}
	if !MatchesExclude("vendor/a/b.go", []string{"vendor/**"}) {
		t.Error("expected vendor/** to match")
	}
}

func TestWalk_GitignoreRules(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":            "/generated/*.go\ncache/\n!keep.log\n",
		"generated/api.go":      "package api\n",
		"pkg/generated/keep.go": "package generated\n",
		"pkg/cache/blob.txt":    "x",
		"cache":                 "a file named like the ignored directory",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	want := []string{".gitignore", "cache", "pkg/generated/keep.go"}
	if got := relPaths(files); !equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_InvalidPattern(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "package a\n"})
	if _, err := Walk(WalkerConfig{RootDir: root, Include: []string{"[a-"}}); err == nil {
		t.Error("expected error for malformed include pattern")
	}
}

func TestValidatePatterns(t *testing.T) {
	if err := ValidatePatterns([]string{"**/*.go", "src/{a,b}/*.py"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePatterns([]string{"*.go", "{unclosed"}); err == nil {
		t.Error("expected error for unclosed brace")
	}
}
