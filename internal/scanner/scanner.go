// Package scanner discovers C source files below a directory.
// It respects .rdflowignore files with gitignore-style patterns and filters
// by file extension.
package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSources is returned by Collect when no argument yields a source file.
var ErrNoSources = errors.New("no source files found")

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	Extensions      []string // File suffixes to keep, e.g. ".c"
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	FollowSymlinks  bool     // Follow file symlinks (within root only)
	DefaultExcludes []string // Directory names that are never entered
	IgnoreFileName  string   // Name of the ignore file (default: .rdflowignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Extensions:     []string{".c"},
		SkipHidden:     true,
		FollowSymlinks: false,
		IgnoreFileName: ".rdflowignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			"build",
			"dist",
			"out",
			"bin",
			"obj",
			"vendor",
			"third_party",
			"CMakeFiles",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".rdflowignore"
	}
	return &Scanner{opts: opts}
}

// Scan recursively scans the directory at root and returns the matching
// files sorted by relative path.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	patterns, err := s.loadIgnorePatterns(absRoot, "")
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}

		relPath, err := filepath.Rel(absRoot, p)
		if err != nil || relPath == "." {
			return nil
		}
		relSlash := filepath.ToSlash(relPath)

		if s.opts.SkipHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || ignoredDir(relSlash, patterns) {
				return filepath.SkipDir
			}
			nested, err := s.loadIgnorePatterns(p, relSlash)
			if err == nil && len(nested) > 0 {
				patterns = append(patterns, nested...)
			}
			return nil
		}

		if !s.hasExtension(d.Name()) || ignored(relSlash, patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			info, err = s.resolveSymlink(absRoot, p)
			if err != nil || info == nil {
				return nil
			}
		}

		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: p,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// resolveSymlink returns the target's info when the link points at a
// regular file inside root, or nil when it should be skipped.
func (s *Scanner) resolveSymlink(absRoot, p string) (fs.FileInfo, error) {
	if !s.opts.FollowSymlinks {
		return nil, nil
	}
	realPath, err := filepath.EvalSymlinks(p)
	if err != nil {
		return nil, err
	}
	realAbs, err := filepath.Abs(realPath)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(realAbs, absRoot+string(filepath.Separator)) {
		return nil, nil
	}
	info, err := os.Stat(realAbs)
	if err != nil || info.IsDir() {
		return nil, err
	}
	return info, nil
}

func (s *Scanner) hasExtension(name string) bool {
	if len(s.opts.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, want := range s.opts.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnorePatterns reads the ignore file in dir. Patterns from a nested
// file are rebased onto prefix so they only apply below that directory.
func (s *Scanner) loadIgnorePatterns(dir, prefix string) ([]IgnorePattern, error) {
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if prefix != "" {
			line = rebase(line, prefix)
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}
	return patterns, sc.Err()
}

func rebase(line, prefix string) string {
	neg := ""
	if strings.HasPrefix(line, "!") {
		neg, line = "!", line[1:]
	}
	body := strings.TrimPrefix(line, "/")
	if !strings.HasPrefix(line, "/") && !strings.Contains(strings.TrimSuffix(body, "/"), "/") {
		body = "**/" + body
	}
	return neg + "/" + prefix + "/" + body
}

// ignored applies patterns in order; a later negation re-includes a path.
func ignored(relPath string, patterns []IgnorePattern) bool {
	result := false
	for _, p := range patterns {
		if p.Match(relPath) {
			result = !p.IsNegation()
		}
	}
	return result
}

func ignoredDir(relPath string, patterns []IgnorePattern) bool {
	result := false
	for _, p := range patterns {
		if p.MatchDir(relPath) {
			result = !p.IsNegation()
		}
	}
	return result
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}

// Collect expands command-line arguments into source files. Directories are
// scanned with opts; files are taken as given whatever their extension;
// "-" is passed through for stdin.
func Collect(args []string, opts Options) ([]string, error) {
	s := New(opts)
	var out []string
	for _, arg := range args {
		if arg == "-" {
			out = append(out, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		files, err := s.Scan(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out = append(out, filepath.Join(arg, filepath.FromSlash(f.Path)))
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSources
	}
	return out, nil
}
