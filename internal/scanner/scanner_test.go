package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.c":           "int main() { return 0; }",
		"lib/list.c":       "int x = 1;",
		"lib/list.h":       "int f(void);",
		"README.md":        "# Test",
		"UPPER.C":          "int y = 2;",
		".hidden/secret.c": "int z = 3;",
		".git/hooks/a.c":   "int a = 4;",
		"vendor/dep/dep.c": "int d = 5;",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := paths(results)
	want := []string{"UPPER.C", "lib/list.c", "main.c"}
	if len(got) != len(want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	for _, f := range results {
		if !filepath.IsAbs(f.FullPath) {
			t.Errorf("FullPath %s is not absolute", f.FullPath)
		}
		if f.Size == 0 {
			t.Errorf("Size of %s = 0", f.Path)
		}
	}
}

func TestScannerExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.c":   "int a = 1;",
		"b.h":   "int b(void);",
		"c.txt": "text",
	})

	opts := DefaultOptions()
	opts.Extensions = []string{".c", ".h"}
	results, err := New(opts).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := paths(results); len(got) != 2 || got[0] != "a.c" || got[1] != "b.h" {
		t.Errorf("Scan() = %v, want [a.c b.h]", got)
	}

	opts.Extensions = nil
	results, _ = New(opts).Scan(tmpDir)
	if len(results) != 3 {
		t.Errorf("empty Extensions should keep every file, got %v", paths(results))
	}
}

func TestScannerWithIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".rdflowignore": `# generated sources
*_gen.c
generated/
/legacy.c
!keep_gen.c
`,
		"app.c":             "int a = 1;",
		"parser_gen.c":      "int p = 1;",
		"keep_gen.c":        "int k = 1;",
		"generated/out.c":   "int o = 1;",
		"src/generated/x.c": "int x = 1;",
		"legacy.c":          "int l = 1;",
		"src/legacy.c":      "int s = 1;",
		"src/lexer_gen.c":   "int q = 1;",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	found := make(map[string]bool)
	for _, f := range results {
		found[f.Path] = true
	}

	for _, expected := range []string{"app.c", "keep_gen.c", "src/legacy.c"} {
		if !found[expected] {
			t.Errorf("Expected to find %s", expected)
		}
	}
	for _, ignored := range []string{"parser_gen.c", "generated/out.c", "src/generated/x.c", "legacy.c", "src/lexer_gen.c"} {
		if found[ignored] {
			t.Errorf("Expected %s to be ignored", ignored)
		}
	}
}

func TestScannerNestedIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"sub/.rdflowignore": "skip.c\n",
		"sub/skip.c":        "int s = 1;",
		"sub/deep/skip.c":   "int d = 1;",
		"sub/keep.c":        "int k = 1;",
		"skip.c":            "int r = 1;",
	})

	results, err := New(DefaultOptions()).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	found := make(map[string]bool)
	for _, f := range results {
		found[f.Path] = true
	}
	if !found["skip.c"] || !found["sub/keep.c"] {
		t.Errorf("nested ignore file leaked outside its directory: %v", paths(results))
	}
	if found["sub/skip.c"] || found["sub/deep/skip.c"] {
		t.Errorf("nested ignore file not applied: %v", paths(results))
	}
}

func TestScannerSkipHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"visible.c":      "int v = 1;",
		".hidden/file.c": "int h = 1;",
		".dotfile.c":     "int d = 1;",
	})

	opts := DefaultOptions()
	results, _ := New(opts).Scan(tmpDir)
	for _, f := range results {
		if f.Path != "visible.c" {
			t.Errorf("Should skip hidden files when SkipHidden=true, found %s", f.Path)
		}
	}

	opts.SkipHidden = false
	results, _ = New(opts).Scan(tmpDir)
	if len(results) != 3 {
		t.Errorf("SkipHidden=false should find 3 files, got %v", paths(results))
	}
}

func TestIgnorePattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		match   bool
	}{
		// Simple patterns
		{"*.c", "file.c", true},
		{"*.c", "dir/file.c", true},
		{"*.c", "file.h", false},
		{"gen/", "gen/file.c", true},
		{"gen/", "other/gen/file.c", true},
		{"gen/", "generator.c", false},
		{"gen/", "gen", false},

		// Anchored patterns
		{"/gen/", "gen/file.c", true},
		{"/gen/", "other/gen/file.c", false},
		{"/main.c", "main.c", true},
		{"/main.c", "src/main.c", false},
		{"src/*.c", "src/a.c", true},
		{"src/*.c", "lib/src/a.c", false},

		// Double star
		{"**/test/*.c", "test/a.c", true},
		{"**/test/*.c", "x/y/test/a.c", true},
		{"src/**/*.c", "src/a/b/c.c", true},

		// Case-insensitive
		{"*.C", "main.c", true},

		// Negation keeps the pattern body
		{"!keep.c", "keep.c", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			p := ParseIgnorePattern(tt.pattern)
			if got := p.Match(tt.path); got != tt.match {
				t.Errorf("ParseIgnorePattern(%q).Match(%q) = %v, want %v", tt.pattern, tt.path, got, tt.match)
			}
		})
	}

	if !ParseIgnorePattern("!keep.c").IsNegation() {
		t.Error("IsNegation() = false for !keep.c")
	}
	if got := ParseIgnorePattern("/a/").String(); got != "/a/" {
		t.Errorf("String() = %q", got)
	}
}

func TestCollect(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"dir/a.c":   "int a = 1;",
		"dir/b.txt": "text",
		"single.h":  "int s = 1;",
	})

	got, err := Collect([]string{filepath.Join(tmpDir, "dir"), filepath.Join(tmpDir, "single.h"), "-"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	want := []string{filepath.Join(tmpDir, "dir", "a.c"), filepath.Join(tmpDir, "single.h"), "-"}
	if len(got) != len(want) {
		t.Fatalf("Collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Collect()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := Collect([]string{filepath.Join(tmpDir, "missing.c")}, DefaultOptions()); err == nil {
		t.Error("Collect() should fail on a missing path")
	}

	empty := t.TempDir()
	if _, err := Collect([]string{empty}, DefaultOptions()); !errors.Is(err, ErrNoSources) {
		t.Errorf("Collect() error = %v, want ErrNoSources", err)
	}
}
