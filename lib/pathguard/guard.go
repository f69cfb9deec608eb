// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package pathguard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
)

// maxSymlinkHops bounds symlink expansion during canonicalization,
// matching the Linux MAXSYMLINKS limit.
const maxSymlinkHops = 40

// rootDirectoryMode is the permission used when EnsureRoot creates a
// missing root directory.
const rootDirectoryMode = 0o755

// ErrOutsideRoots is the sentinel matched by every [Violation].
var ErrOutsideRoots = errors.New("path outside allowed roots")

// Violation describes a candidate path that failed validation, either
// because its canonical form lies outside every allowed root or because
// it could not be canonicalized safely (NUL bytes, symlink loops).
type Violation struct {
	// Candidate is the path as supplied by the caller.
	Candidate string

	// Resolved is the canonical form of Candidate. Empty when
	// canonicalization itself failed.
	Resolved string

	// Roots are the canonical allowed roots the candidate was checked
	// against.
	Roots []string

	// Cause is the canonicalization error, if any.
	Cause error
}

func (v *Violation) Error() string {
	if v.Cause != nil {
		return fmt.Sprintf("path %q cannot be resolved safely: %v", v.Candidate, v.Cause)
	}
	return fmt.Sprintf("path %q resolves to %q, outside allowed roots %v",
		v.Candidate, v.Resolved, v.Roots)
}

// Unwrap exposes both [ErrOutsideRoots] and the canonicalization cause.
func (v *Violation) Unwrap() []error {
	if v.Cause != nil {
		return []error{ErrOutsideRoots, v.Cause}
	}
	return []error{ErrOutsideRoots}
}

// Canonicalize returns the absolute, symlink-free form of path.
// Relative paths are resolved against the working directory. Existing
// components are followed through symlinks; ".." pops the physically
// resolved parent. Components that do not exist are appended lexically.
func Canonicalize(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if strings.IndexByte(path, 0) >= 0 {
		return "", fmt.Errorf("path %q contains a NUL byte", path)
	}

	if !filepath.IsAbs(path) {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving relative path %q: %w", path, err)
		}
		// Concatenate rather than Join: Join would apply ".." lexically
		// before any symlink in the working directory is resolved.
		path = workingDirectory + string(filepath.Separator) + path
	}

	pending := splitComponents(path)
	resolved := string(filepath.Separator)
	hops := 0

	for len(pending) > 0 {
		component := pending[0]
		pending = pending[1:]

		if component == ".." {
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, component)
		info, err := os.Lstat(next)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
				resolved = next
				continue
			}
			return "", fmt.Errorf("resolving %q: %w", next, err)
		}

		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxSymlinkHops {
			return "", fmt.Errorf("resolving %q: too many levels of symbolic links", path)
		}
		target, err := os.Readlink(next)
		if err != nil {
			return "", fmt.Errorf("reading symlink %q: %w", next, err)
		}
		if filepath.IsAbs(target) {
			resolved = string(filepath.Separator)
		}
		pending = append(splitComponents(target), pending...)
	}

	return resolved, nil
}

// splitComponents splits a path into its non-empty components,
// dropping "." entries. ".." entries are kept for the walker.
func splitComponents(path string) []string {
	var components []string
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == "" || part == "." {
			continue
		}
		components = append(components, part)
	}
	return components
}

// within reports whether path equals root or is a separator-bounded
// descendant of it. Both arguments must be canonical.
func within(path, root string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// Guard holds a canonicalized set of allowed roots. A Guard is
// immutable after construction and safe for concurrent use.
type Guard struct {
	roots []string
}

// New canonicalizes each root and returns a Guard over them. At least
// one root is required.
func New(roots ...string) (*Guard, error) {
	if len(roots) == 0 {
		return nil, errors.New("pathguard: at least one allowed root is required")
	}

	canonical := make([]string, 0, len(roots))
	for _, root := range roots {
		resolved, err := Canonicalize(root)
		if err != nil {
			return nil, fmt.Errorf("pathguard: canonicalizing root %q: %w", root, err)
		}
		if !slices.Contains(canonical, resolved) {
			canonical = append(canonical, resolved)
		}
	}
	return &Guard{roots: canonical}, nil
}

// Roots returns a copy of the canonical allowed roots.
func (g *Guard) Roots() []string {
	return slices.Clone(g.roots)
}

// Validate returns the canonical form of candidate if it equals, or is a
// descendant of, at least one allowed root. Any other outcome, including
// a candidate that cannot be canonicalized, is a *Violation.
func (g *Guard) Validate(candidate string) (string, error) {
	resolved, err := Canonicalize(candidate)
	if err != nil {
		return "", &Violation{Candidate: candidate, Roots: g.Roots(), Cause: err}
	}
	for _, root := range g.roots {
		if within(resolved, root) {
			return resolved, nil
		}
	}
	return "", &Violation{Candidate: candidate, Resolved: resolved, Roots: g.Roots()}
}

// Contains reports whether candidate passes [Guard.Validate].
func (g *Guard) Contains(candidate string) bool {
	_, err := g.Validate(candidate)
	return err == nil
}

// isRoot reports whether resolved is exactly one of the allowed roots.
func (g *Guard) isRoot(resolved string) bool {
	return slices.Contains(g.roots, resolved)
}

// EnsureRoot validates candidate and returns its canonical form,
// guaranteeing that it names an existing directory. If the canonical
// form is exactly one of the allowed roots and does not exist, it is
// created with mode 0755. Nothing is created for any other candidate,
// so a traversal can never cause directories to appear outside a root.
func (g *Guard) EnsureRoot(candidate string) (string, error) {
	resolved, err := g.Validate(candidate)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	switch {
	case err == nil:
		if !info.IsDir() {
			return "", fmt.Errorf("pathguard: %s exists and is not a directory", resolved)
		}
		return resolved, nil

	case errors.Is(err, fs.ErrNotExist):
		if !g.isRoot(resolved) {
			return "", fmt.Errorf("pathguard: %s does not exist and is not an allowed root: %w", resolved, err)
		}
		if err := os.MkdirAll(resolved, rootDirectoryMode); err != nil {
			return "", fmt.Errorf("pathguard: creating %s: %w", resolved, err)
		}

		// A component may have been swapped for a symlink while the
		// directories were being created.
		again, err := g.Validate(resolved)
		if err != nil {
			return "", err
		}
		if again != resolved {
			return "", &Violation{Candidate: candidate, Resolved: again, Roots: g.Roots()}
		}
		return resolved, nil

	default:
		return "", fmt.Errorf("pathguard: checking %s: %w", resolved, err)
	}
}

// Validate is a convenience for New(allowedRoots...).Validate(candidate).
func Validate(candidate string, allowedRoots []string) (string, error) {
	guard, err := New(allowedRoots...)
	if err != nil {
		return "", err
	}
	return guard.Validate(candidate)
}
