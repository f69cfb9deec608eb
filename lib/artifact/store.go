// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cowrie/capture/lib/pathguard"
)

// tempPattern names in-progress captures. The leading dot and the
// non-hex prefix keep temporary files from ever colliding with a
// published digest name.
const tempPattern = ".capture-*"

// StoreOptions configures [NewStore].
type StoreOptions struct {
	// Logger receives warnings about the root and about content that is
	// discarded on the finalize path. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a flat content-addressed directory. Each Store captures its
// own root at construction, so independently rooted stores can coexist
// in one process. A Store is safe for concurrent use; handles are not.
type Store struct {
	root     string
	guard    *pathguard.Guard
	fileMode os.FileMode
	logger   *slog.Logger

	// formatDigest turns a raw SHA-256 sum into the artifact name.
	// Replaced only by tests exercising the malformed-digest path.
	formatDigest func([]byte) string
}

// NewStore validates root, creates it if it does not exist, and returns
// a Store that publishes into it. The root is canonicalized once here;
// every later path check is against that canonical form. Any failure is
// reported as ErrStoreUnavailable wrapping the underlying cause.
//
// The process umask is read once so that published files get mode
// 0666 &^ umask, the mode an ordinary create would have produced.
func NewStore(root string, options StoreOptions) (*Store, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if root == "" {
		return nil, fmt.Errorf("%w: empty root", ErrStoreUnavailable)
	}
	guard, err := pathguard.New(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	canonical, err := guard.EnsureRoot(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if info.Mode().Perm()&0o002 != 0 {
		logger.Warn("artifact root is world-writable",
			"root", canonical,
			"mode", fmt.Sprintf("%#o", info.Mode().Perm()),
		)
	}

	return &Store{
		root:         canonical,
		guard:        guard,
		fileMode:     0o666 &^ processUmask(),
		logger:       logger,
		formatDigest: formatDigest,
	}, nil
}

// Root returns the canonical store root.
func (s *Store) Root() string {
	return s.root
}

// Path returns where content with the given digest is, or would be,
// published. It does not check that the file exists.
func (s *Store) Path(digest string) string {
	return filepath.Join(s.root, digest)
}

// Open starts a new capture. The root is re-checked first, so a root
// that was removed since construction is recreated and one that was
// replaced by a symlink out of bounds is refused. The returned handle
// is backed by a mode 0600 temporary file inside the root.
func (s *Store) Open(label string) (*Handle, error) {
	if _, err := s.guard.EnsureRoot(s.root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	file, err := os.CreateTemp(s.root, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp file: %w", ErrStoreUnavailable, err)
	}
	return &Handle{
		store:    s,
		label:    label,
		file:     file,
		tempPath: file.Name(),
	}, nil
}

// destination computes and re-validates the final path for digest. The
// result must resolve to itself as a direct child of the root: a
// destination that escapes the root, names the root, or has been
// replaced by a symlink is a *pathguard.Violation.
func (s *Store) destination(digest string) (string, error) {
	candidate := s.root + string(filepath.Separator) + digest
	resolved, err := s.guard.Validate(candidate)
	if err != nil {
		return "", err
	}
	if resolved != candidate || filepath.Dir(resolved) != s.root {
		return "", &pathguard.Violation{
			Candidate: candidate,
			Resolved:  resolved,
			Roots:     s.guard.Roots(),
			Cause:     errors.New("artifact destination is not a direct child of the store root"),
		}
	}
	return resolved, nil
}
