// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the shared CBOR encoding configuration.
//
// The capture journal is a CBOR sequence: one self-delimiting item per
// record, appended to a file. Every writer goes through this package so
// records encode identically. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer encoding,
// no indefinite-length items.
//
// Writers encode one record at a time and append the bytes in a single
// write; readers walk the sequence with a decoder:
//
//	data, err := codec.Marshal(value)
//	decoder := codec.NewDecoder(file)
//
// Types that are only ever stored as CBOR use `cbor` struct tags.
// fxamacker/cbor falls back to `json` tags when `cbor` tags are absent;
// never put both on the same field.
package codec
