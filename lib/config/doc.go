// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package config resolves honeypot configuration from INI files and
// environment overrides.
//
// [Load] merges a list of files in increasing precedence; missing files
// are skipped so the standard search list from [DefaultPaths] can be
// passed unconditionally. Values may reference other values with
// ${key} (same section or DEFAULT) or ${section:key}; "$$" is a literal
// dollar sign. References are resolved once, at load time, from the
// section that reads the value, so a DEFAULT value can refer to keys
// each section defines for itself.
//
// Every accessor consults the environment first: COWRIE_<SECTION>_<KEY>,
// uppercased, replaces the file value even when set after startup. File
// values never change after load.
//
// Settings that name filesystem locations (see [PathKeys]) are checked
// against an allow-list with package pathguard each time they are read.
// A value outside the allow-list is logged at WARN level and returned
// anyway, so an unusual but deliberate deployment layout keeps working.
//
// Construct one [Resolver] at startup and pass it to the components that
// need it. There is no package-level configuration state.
package config
