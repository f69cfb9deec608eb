// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture connects configuration to the artifact store and
// keeps an audit trail of what was stored.
//
// A [Recorder] is built once at startup from a config.Resolver: the
// store root comes from [honeypot] download_path and, when [honeypot]
// state_path is set, every stored or deduplicated capture is appended to
// a [Journal] at <state_path>/capture-journal.cbor. Sessions hand the
// Recorder a label and a reader; it copies the bytes into a fresh
// artifact handle, finalizes it, logs the outcome, and records it.
//
// The journal is a CBOR sequence (RFC 8742) written through lib/codec.
// Each event is encoded into one buffer and written with a single
// append, so readers never see interleaved records. [ReadJournal]
// decodes the whole file.
package capture
