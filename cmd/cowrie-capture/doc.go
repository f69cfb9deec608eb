// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Cowrie-capture stores a stream read from standard input in the
// honeypot's artifact directory, using the same configuration files,
// COWRIE_* environment overrides, and path checks as the honeypot
// itself. It prints the digest, the published path, and whether the
// content was new.
package main
