// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Status is the outcome of [Handle.Close].
type Status int

const (
	// StatusDiscarded means the capture was empty and not kept.
	StatusDiscarded Status = iota + 1

	// StatusPublished means this handle created the artifact file.
	StatusPublished

	// StatusDuplicate means identical content was already stored. The
	// existing file is the artifact; this capture was dropped.
	StatusDuplicate
)

func (s Status) String() string {
	switch s {
	case StatusDiscarded:
		return "discarded"
	case StatusPublished:
		return "published"
	case StatusDuplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusDiscarded, StatusPublished, StatusDuplicate:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown artifact status %d", int(s))
}

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusDiscarded, StatusPublished, StatusDuplicate} {
		if string(text) == candidate.String() {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown artifact status %q", text)
}

// Artifact identifies stored content.
type Artifact struct {
	// Hash is the lowercase hex SHA-256 digest of the content.
	Hash string

	// Path is the published file, <root>/<Hash>.
	Path string

	// Size is the content length in bytes.
	Size int64
}

// Result is returned by [Handle.Close]. Artifact is zero when Status is
// StatusDiscarded.
type Result struct {
	Status   Status
	Artifact Artifact
}

// Handle is one in-progress capture. It is owned by the caller that
// opened it and is not safe for concurrent use.
type Handle struct {
	store    *Store
	label    string
	file     *os.File
	tempPath string
	size     int64
	closed   bool
}

// Label returns the caller-supplied description of the capture.
func (h *Handle) Label() string {
	return h.label
}

// Size returns the number of bytes written so far.
func (h *Handle) Size() int64 {
	return h.size
}

// Write appends p to the capture. I/O errors are returned unchanged and
// a short write is not rolled back; call [Handle.Discard] to abandon the
// capture.
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, ErrHandleClosed
	}
	n, err := h.file.Write(p)
	h.size += int64(n)
	return n, err
}

// Discard abandons the capture and removes its temporary file.
func (h *Handle) Discard() error {
	if h.closed {
		return ErrHandleClosed
	}
	h.closed = true

	closeErr := h.file.Close()
	if err := os.Remove(h.tempPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", h.tempPath, err)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", h.tempPath, closeErr)
	}
	return nil
}

// Close finalizes the capture.
//
// An empty capture is discarded unless keepEmpty is set. Otherwise the
// temporary file is hashed from disk, the digest and destination are
// checked, and the file is published under its digest. If the digest is
// already stored the result is StatusDuplicate and the temporary file is
// removed. Any error also removes the temporary file; nothing is
// published on an error return.
func (h *Handle) Close(keepEmpty bool) (Result, error) {
	if h.closed {
		return Result{}, ErrHandleClosed
	}
	h.closed = true

	// Clean up the temp file unless it became the artifact.
	consumed := false
	defer func() {
		if !consumed {
			os.Remove(h.tempPath)
		}
	}()

	if err := h.file.Close(); err != nil {
		return Result{}, fmt.Errorf("closing %s: %w", h.tempPath, err)
	}
	if h.size == 0 && !keepEmpty {
		return Result{Status: StatusDiscarded}, nil
	}

	sum, size, err := hashFile(h.tempPath)
	if err != nil {
		return Result{}, err
	}

	digest := h.store.formatDigest(sum)
	if !ValidDigest(digest) {
		h.store.logger.Warn("discarding capture with malformed digest",
			"label", h.label,
			"digest", digest,
		)
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}

	finalPath, err := h.store.destination(digest)
	if err != nil {
		h.store.logger.Warn("discarding capture with unsafe destination",
			"label", h.label,
			"digest", digest,
			"error", err,
		)
		return Result{}, err
	}
	artifact := Artifact{Hash: digest, Path: finalPath, Size: size}

	info, err := os.Lstat(finalPath)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return Result{}, fmt.Errorf("artifact destination %s exists and is not a regular file", finalPath)
		}
		return Result{Status: StatusDuplicate, Artifact: artifact}, nil
	case !errors.Is(err, fs.ErrNotExist):
		return Result{}, fmt.Errorf("checking artifact destination: %w", err)
	}

	// Set the final mode before the file becomes visible under its
	// digest name.
	if err := os.Chmod(h.tempPath, h.store.fileMode); err != nil {
		return Result{}, fmt.Errorf("setting mode on %s: %w", h.tempPath, err)
	}

	published, err := publish(h.tempPath, finalPath)
	if err != nil {
		return Result{}, fmt.Errorf("publishing %s: %w", digest, err)
	}
	if !published {
		// Lost a race with an identical capture.
		return Result{Status: StatusDuplicate, Artifact: artifact}, nil
	}
	consumed = true
	return Result{Status: StatusPublished, Artifact: artifact}, nil
}
