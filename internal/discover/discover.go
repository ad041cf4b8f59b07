// Package discover finds PHP source files under a root directory.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/phpdocgen/internal/lang"
)

// DefaultExclude are the exclusion patterns used when none are configured:
// test and dependency directories anywhere, and framework cache directories
// at the top of a root. A nested Cache/ is left alone since it is usually a
// PSR-4 namespace.
var DefaultExclude = []string{
	`(?i)(^|/)tests?(/|$)`,
	`(?i)(^|/)vendor(/|$)`,
	`(?i)^(var/|storage/framework/)?cache(/|$)`,
	`(?i)(^|/)node_modules(/|$)`,
}

// FileEntry is one discovered source file.
type FileEntry struct {
	Path    string // slash-separated, relative to the root
	AbsPath string
	Size    int64
}

// Options controls which files are returned.
type Options struct {
	// Extensions adds file extensions beyond those of the registered
	// languages, e.g. ".module".
	Extensions []string
	// Exclude holds regular expressions matched against the slash path of
	// every directory and file, relative to the root.
	Exclude []*regexp.Regexp
	// ExcludeGlobs holds doublestar patterns matched the same way.
	ExcludeGlobs []string
	// Gitignore enables the root's .gitignore.
	Gitignore bool
	// MaxFileSize skips larger files when positive.
	MaxFileSize int64
	Logger      *slog.Logger
}

// CompileExclude compiles exclusion patterns, reporting the first bad one.
func CompileExclude(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Files discovers source files under root, sorted by path.
// An unreadable root, directory or file is returned as an *fs.PathError.
func Files(root string, opts Options) ([]FileEntry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "scan", Path: root, Err: errors.New("not a directory")}
	}

	var gi *ignore.GitIgnore
	if opts.Gitignore {
		gi = loadGitignore(root)
	}

	var results []FileEntry
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		name := d.Name()
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.Excluded(rel) || (gi != nil && gi.MatchesPath(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if !opts.Source(name) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			logger.Warn("skipping large file", "path", rel, "size", fi.Size(), "max", opts.MaxFileSize)
			return nil
		}
		results = append(results, FileEntry{Path: rel, AbsPath: path, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

// Source reports whether a file name has a PHP or configured extension.
func (opts Options) Source(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	if lang.ForExtension(ext) != "" {
		return true
	}
	for _, e := range opts.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Excluded reports whether a slash path relative to the root matches an
// exclusion regex or glob.
func (opts Options) Excluded(rel string) bool {
	for _, re := range opts.Exclude {
		if re.MatchString(rel) {
			return true
		}
	}
	for _, g := range opts.ExcludeGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
