package discover

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func paths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func defaultOptions(t *testing.T) Options {
	t.Helper()
	exclude, err := CompileExclude(DefaultExclude)
	if err != nil {
		t.Fatal(err)
	}
	return Options{Exclude: exclude}
}

func TestDiscoverPHPFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/Car.php", "<?php class Car {}")
	writeFile(t, dir, "src/Bike.inc", "<?php class Bike {}")
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, ".hidden.php", "<?php")
	writeFile(t, dir, ".git/hooks/x.php", "<?php")

	entries, err := Files(dir, defaultOptions(t))
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	got := paths(entries)
	want := []string{"src/Bike.inc", "src/Car.php"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if entries[1].AbsPath != filepath.Join(dir, "src", "Car.php") {
		t.Errorf("abs path = %q", entries[1].AbsPath)
	}
}

func TestDiscoverDefaultExclusions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/Car.php", "<?php")
	writeFile(t, dir, "tests/CarTest.php", "<?php")
	writeFile(t, dir, "src/Test/Fixture.php", "<?php")
	writeFile(t, dir, "vendor/acme/lib/Lib.php", "<?php")
	writeFile(t, dir, "var/cache/Proxy.php", "<?php")
	writeFile(t, dir, "cache/Compiled.php", "<?php")
	writeFile(t, dir, "storage/framework/cache/View.php", "<?php")
	writeFile(t, dir, "src/Cache/Pool.php", "<?php")
	writeFile(t, dir, "src/Testing.php", "<?php")

	entries, err := Files(dir, defaultOptions(t))
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	got := paths(entries)
	if len(got) != 3 || got[0] != "src/Cache/Pool.php" || got[1] != "src/Car.php" || got[2] != "src/Testing.php" {
		t.Errorf("got %v", got)
	}
}

func TestDiscoverGlobsAndExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/Car.php", "<?php")
	writeFile(t, dir, "src/generated/Stub.php", "<?php")
	writeFile(t, dir, "modules/shop.module", "<?php")

	opts := defaultOptions(t)
	opts.ExcludeGlobs = []string{"**/generated/**"}
	opts.Extensions = []string{"module"}
	entries, err := Files(dir, opts)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	got := paths(entries)
	if len(got) != 2 || got[0] != "modules/shop.module" || got[1] != "src/Car.php" {
		t.Errorf("got %v", got)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "build/\n*.gen.php\n")
	writeFile(t, dir, "src/Car.php", "<?php")
	writeFile(t, dir, "src/Car.gen.php", "<?php")
	writeFile(t, dir, "build/Out.php", "<?php")

	opts := defaultOptions(t)
	opts.Gitignore = true
	entries, err := Files(dir, opts)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); len(got) != 1 || got[0] != "src/Car.php" {
		t.Errorf("got %v", got)
	}

	opts.Gitignore = false
	entries, err = Files(dir, opts)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("without gitignore got %v", paths(entries))
	}
}

func TestDiscoverMaxFileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "small.php", "<?php")
	writeFile(t, dir, "big.php", "<?php // this file is well over the limit")

	opts := defaultOptions(t)
	opts.MaxFileSize = 10
	entries, err := Files(dir, opts)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if got := paths(entries); len(got) != 1 || got[0] != "small.php" {
		t.Errorf("got %v", got)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.php", "<?php")

	err := os.Symlink(filepath.Join(dir, "real.php"), filepath.Join(dir, "link.php"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "real.php" {
		t.Errorf("got %v", paths(entries))
	}
}

func TestDiscoverUnreadableRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "nope")
	_, err := Files(missing, Options{})
	var pe *fs.PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *fs.PathError, got %v", err)
	}
	if pe.Path != missing {
		t.Errorf("path = %q, want %q", pe.Path, missing)
	}

	file := filepath.Join(dir, "file.php")
	writeFile(t, dir, "file.php", "<?php")
	if _, err := Files(file, Options{}); !errors.As(err, &pe) || pe.Path != file {
		t.Errorf("file root: got %v", err)
	}
}

func TestCompileExcludeRejectsBadPattern(t *testing.T) {
	t.Parallel()
	if _, err := CompileExclude([]string{"("}); err == nil {
		t.Error("expected error")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
