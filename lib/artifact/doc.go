// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact stores captured byte streams in a flat
// content-addressed directory.
//
// A [Store] is bound to one root directory, validated and created
// through lib/pathguard when the store is constructed. Each capture gets
// a [Handle] backed by a private temporary file in that root. Writes
// append to the file. [Handle.Close] re-reads the file from disk,
// computes its SHA-256 digest, and publishes it as
// <root>/<64 lowercase hex characters>. Content that is already present
// is reported as a duplicate and the temporary file is removed; equality
// is trusted from the digest and never re-verified byte for byte.
//
// Every hazard on the finalize path fails closed: a malformed digest or a
// destination that does not resolve to a direct child of the root
// removes the temporary file and returns an error instead of publishing.
//
// The store holds no in-process lock. Publication uses a rename that
// refuses to replace an existing destination (renameat2 with
// RENAME_NOREPLACE on Linux, a hard link elsewhere), so two sessions
// finalizing identical content concurrently leave exactly one file and
// both observe success.
//
// The store is write-only. Serving published content back out is the
// caller's responsibility.
package artifact
