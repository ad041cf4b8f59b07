// Package source scans PHP source roots into a symbol table and resolves
// names that the roots reference but do not declare.
//
// Names resolve in a fixed order: declarations found under the roots, then
// files located through each root's composer manifest, then built-in stubs.
// Lookups ignore case as PHP does; stored names keep their declared case.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/phpdocgen/internal/composer"
	"github.com/phobologic/phpdocgen/internal/discover"
	"github.com/phobologic/phpdocgen/internal/lang"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/parse"
	"github.com/phobologic/phpdocgen/internal/stubs"
)

// DefaultCacheSize bounds the number of manifest-located files kept parsed.
const DefaultCacheSize = 256

// Options configures a scan.
type Options struct {
	Discover discover.Options
	// Autoload consults each root's composer.json when a name is missing.
	Autoload bool
	// RequireManifest makes a root without composer.json a fatal error.
	RequireManifest bool
	// CacheSize bounds the parsed-file cache; DefaultCacheSize when zero.
	CacheSize int
	// Stubs supplies built-in declarations. The embedded set is used when nil.
	Stubs  *stubs.Set
	Logger *slog.Logger
}

// Table is the symbol table produced by Scan.
type Table struct {
	decls  []model.Declaration
	byName map[string]int
	files  int

	mu        sync.Mutex
	external  map[string]model.Declaration
	manifests []*composer.Manifest
	classmap  map[string]string
	located   map[string]string
	cache     *lru.Cache[string, []model.Declaration]
	stubs     *stubs.Set
	parser    *sitter.Parser
	logger    *slog.Logger
}

// Scan discovers and parses every source file under roots, then checks that
// every parent, interface and trait they reference can be resolved.
func Scan(ctx context.Context, roots []string, opts Options) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Discover.Logger == nil {
		opts.Discover.Logger = logger
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []model.Declaration](size)
	if err != nil {
		return nil, fmt.Errorf("creating parse cache: %w", err)
	}
	set := opts.Stubs
	if set == nil {
		if set, err = stubs.Load(); err != nil {
			return nil, err
		}
	}

	t := &Table{
		byName:   make(map[string]int),
		external: make(map[string]model.Declaration),
		located:  make(map[string]string),
		cache:    cache,
		stubs:    set,
		parser:   lang.PHP().NewParser(),
		logger:   logger,
	}

	for _, root := range roots {
		if err := t.scanRoot(ctx, root, opts); err != nil {
			t.Close()
			return nil, err
		}
	}
	if err := t.validate(); err != nil {
		t.Close()
		return nil, err
	}
	logger.Debug("scan complete", "roots", len(roots), "files", t.files, "declarations", len(t.decls))
	return t, nil
}

func (t *Table) scanRoot(ctx context.Context, root string, opts Options) error {
	entries, err := discover.Files(root, opts.Discover)
	if err != nil {
		return notReadable(root, err)
	}

	if opts.Autoload {
		m, err := composer.Load(root)
		switch {
		case err == nil:
			t.manifests = append(t.manifests, m)
		case errors.Is(err, fs.ErrNotExist):
			path := manifestPath(root, err)
			if opts.RequireManifest {
				return &ManifestMissingError{Path: path}
			}
			t.logger.Debug("no dependency manifest", "root", root)
		default:
			return notReadable(root, err)
		}
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := os.ReadFile(e.AbsPath)
		if err != nil {
			return notReadable(e.AbsPath, err)
		}
		res, err := parse.File(ctx, t.parser, src, e.AbsPath)
		if err != nil {
			return err
		}
		if res.HasErrors {
			t.logger.Warn("syntax errors, declarations are best effort", "path", e.AbsPath)
		}
		t.files++
		for _, d := range res.Declarations {
			t.add(d)
		}
	}
	return nil
}

// notReadable converts a filesystem error into a PathNotReadableError
// naming the path that failed.
func notReadable(fallback string, err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return &PathNotReadableError{Path: pe.Path, Err: pe.Err}
	}
	return &PathNotReadableError{Path: fallback, Err: err}
}

func manifestPath(root string, err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Path
	}
	return root + string(os.PathSeparator) + composer.FileName
}

func (t *Table) add(d model.Declaration) {
	if d.Name == "" {
		return
	}
	d.Origin = model.FromRoot
	t.decls = append(t.decls, d)
	if !d.Kind.ClassLike() {
		return
	}
	key := strings.ToLower(d.Name)
	if _, dup := t.byName[key]; !dup {
		t.byName[key] = len(t.decls) - 1
	}
}

// validate resolves every name reachable through inheritance from the
// root declarations.
func (t *Table) validate() error {
	seen := make(map[string]struct{})
	var walk func(d model.Declaration) error
	walk = func(d model.Declaration) error {
		for _, ref := range references(d) {
			key := strings.ToLower(ref)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			parent, ok := t.Lookup(ref)
			if !ok {
				return &SymbolNotFoundError{Name: ref, ReferencedBy: d.Name}
			}
			if err := walk(parent); err != nil {
				return err
			}
		}
		return nil
	}
	for _, d := range t.decls {
		if !d.Kind.ClassLike() {
			continue
		}
		if err := walk(d); err != nil {
			return err
		}
	}
	return nil
}

func references(d model.Declaration) []string {
	var out []string
	if d.Parent != "" {
		out = append(out, d.Parent)
	}
	out = append(out, d.Interfaces...)
	return append(out, d.Traits...)
}

// Declarations returns every root declaration in discovery order,
// duplicates included.
func (t *Table) Declarations() []model.Declaration {
	return t.decls
}

// Files returns the number of source files parsed under the roots.
func (t *Table) Files() int {
	return t.files
}

// Lookup resolves a class-like name through the root, manifest and
// built-in sources, in that order.
func (t *Table) Lookup(name string) (model.Declaration, bool) {
	name = strings.TrimLeft(name, `\`)
	key := strings.ToLower(name)
	if i, ok := t.byName[key]; ok {
		return t.decls[i], true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.external[key]; ok {
		return d, true
	}
	if d, ok := t.fromManifests(name); ok {
		d.Origin = model.FromManifest
		t.external[key] = d
		return d, true
	}
	if d, ok := t.stubs.Lookup(name); ok {
		t.external[key] = d
		return d, true
	}
	return model.Declaration{}, false
}

// Resolve is Lookup returning a SymbolNotFoundError on a miss.
func (t *Table) Resolve(name, referencedBy string) (model.Declaration, error) {
	d, ok := t.Lookup(name)
	if !ok {
		return model.Declaration{}, &SymbolNotFoundError{Name: name, ReferencedBy: referencedBy}
	}
	return d, nil
}

func (t *Table) fromManifests(name string) (model.Declaration, bool) {
	// A file parsed for one name may declare others.
	if path, ok := t.located[strings.ToLower(name)]; ok {
		if d, ok := t.findIn(path, name); ok {
			return d, true
		}
	}
	for _, m := range t.manifests {
		for _, path := range m.Candidates(name) {
			if d, ok := t.findIn(path, name); ok {
				return d, true
			}
		}
	}
	if t.classmap == nil {
		t.indexClassmaps()
	}
	if path, ok := t.classmap[strings.ToLower(name)]; ok {
		return t.findIn(path, name)
	}
	return model.Declaration{}, false
}

func (t *Table) findIn(path, name string) (model.Declaration, bool) {
	for _, d := range t.parsed(path) {
		if d.Kind.ClassLike() && strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return model.Declaration{}, false
}

// parsed returns the declarations of a manifest-located file. Unreadable
// files yield nothing; the caller then falls through to the next source.
func (t *Table) parsed(path string) []model.Declaration {
	if t.parser == nil {
		return nil
	}
	if decls, ok := t.cache.Get(path); ok {
		return decls
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("reading manifest-located file", "path", path, "error", err)
		}
		return nil
	}
	res, err := parse.File(context.Background(), t.parser, src, path)
	if err != nil {
		t.logger.Warn("parsing manifest-located file", "path", path, "error", err)
		return nil
	}
	t.cache.Add(path, res.Declarations)
	for _, d := range res.Declarations {
		key := strings.ToLower(d.Name)
		if _, dup := t.located[key]; !dup && d.Kind.ClassLike() {
			t.located[key] = path
		}
	}
	return res.Declarations
}

func (t *Table) indexClassmaps() {
	t.classmap = make(map[string]string)
	for _, m := range t.manifests {
		files, err := m.ClassmapFiles()
		if err != nil {
			t.logger.Warn("listing classmap", "manifest", m.Path, "error", err)
			continue
		}
		for _, f := range files {
			for _, d := range t.parsed(f) {
				key := strings.ToLower(d.Name)
				if _, dup := t.classmap[key]; !dup && d.Kind.ClassLike() {
					t.classmap[key] = f
				}
			}
		}
	}
}

// Close releases the parser. The table's declarations stay usable but
// names not yet resolved can no longer be loaded from manifests.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.parser != nil {
		t.parser.Close()
		t.parser = nil
		t.manifests = nil
	}
}
