// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathguard canonicalizes filesystem paths and checks them
// against a set of permitted root directories.
//
// Canonicalization produces an absolute path with every symlink in the
// existing portion of the path resolved and every "." and ".." component
// applied physically, the way the kernel would walk it. Components that
// do not exist yet are appended lexically, so a path can be checked
// before it is created.
//
// Containment is decided on path components with an explicit separator
// boundary: a root of /data/artifacts admits /data/artifacts and
// /data/artifacts/x but never /data/artifacts-evil/x.
//
// Key exports:
//
//   - [Canonicalize] -- the symlink-free absolute form of a path
//   - [Guard] -- a canonicalized root set with [Guard.Validate] and
//     [Guard.EnsureRoot]
//   - [Violation] and [ErrOutsideRoots] -- the failure returned for any
//     candidate that escapes every root or cannot be resolved safely
//
// This package has no dependencies on other packages in this module.
package pathguard
