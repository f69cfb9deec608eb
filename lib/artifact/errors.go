// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import "errors"

var (
	// ErrStoreUnavailable is returned when the store root cannot be
	// validated, created, or written to.
	ErrStoreUnavailable = errors.New("artifact store unavailable")

	// ErrInvalidDigest is returned when a computed digest is not exactly
	// 64 lowercase hex characters. The content is discarded.
	ErrInvalidDigest = errors.New("artifact digest is not lowercase hex")

	// ErrHandleClosed is returned by any operation on a handle after
	// Close or Discard.
	ErrHandleClosed = errors.New("artifact handle is closed")
)
