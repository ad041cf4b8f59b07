package source

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotReadable matches errors for roots and files that cannot be read.
	ErrPathNotReadable = errors.New("path not readable")
	// ErrSymbolNotFound matches errors for inherited names no source declares.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrManifestMissing matches errors for a required but absent manifest.
	ErrManifestMissing = errors.New("dependency manifest missing")
)

// PathNotReadableError reports the path that could not be read.
type PathNotReadableError struct {
	Path string
	Err  error
}

func (e *PathNotReadableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("path not readable: %s", e.Path)
	}
	return fmt.Sprintf("path not readable: %s: %v", e.Path, e.Err)
}

func (e *PathNotReadableError) Is(target error) bool { return target == ErrPathNotReadable }
func (e *PathNotReadableError) Unwrap() error        { return e.Err }

// SymbolNotFoundError reports an inherited name that none of the root,
// manifest or built-in sources declares.
type SymbolNotFoundError struct {
	Name         string
	ReferencedBy string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol not found: %s (referenced by %s)", e.Name, e.ReferencedBy)
}

func (e *SymbolNotFoundError) Is(target error) bool { return target == ErrSymbolNotFound }

// ManifestMissingError names the manifest path that was expected.
type ManifestMissingError struct {
	Path string
}

func (e *ManifestMissingError) Error() string {
	return fmt.Sprintf("dependency manifest missing: expected %s", e.Path)
}

func (e *ManifestMissingError) Is(target error) bool { return target == ErrManifestMissing }
