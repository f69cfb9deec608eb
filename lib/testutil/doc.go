// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [LogBuffer] is an in-memory slog handler. Components take a
// *slog.Logger in their options; tests pass LogBuffer.Logger() and then
// assert on the captured records. This is how warn-and-continue paths
// are tested: the call succeeds, and the warning is the observable
// effect.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) for tests that fan work out to
// goroutines and collect results over a channel.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no dependencies on other packages in this module.
package testutil
