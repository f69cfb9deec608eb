// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
)

// ErrMissingKey is matched by every [MissingKeyError].
var ErrMissingKey = errors.New("configuration key not found")

// ParseError reports a configuration file that could not be read or
// parsed. It is fatal at startup.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing configuration file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InterpolationError reports a ${...} reference that could not be
// resolved: an unknown section or key, a cycle, or malformed syntax.
type InterpolationError struct {
	Section   string
	Key       string
	Reference string
	Reason    string
}

func (e *InterpolationError) Error() string {
	if e.Reference == "" {
		return fmt.Sprintf("interpolating [%s] %s: %s", e.Section, e.Key, e.Reason)
	}
	return fmt.Sprintf("interpolating [%s] %s: reference ${%s}: %s",
		e.Section, e.Key, e.Reference, e.Reason)
}

// MissingKeyError is returned by accessors when neither the environment
// nor any loaded file supplies the requested key.
type MissingKeyError struct {
	Section string
	Key     string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("configuration key [%s] %s not found (environment variable %s is also unset)",
		e.Section, e.Key, EnvironmentKey(e.Section, e.Key))
}

func (e *MissingKeyError) Unwrap() error { return ErrMissingKey }
