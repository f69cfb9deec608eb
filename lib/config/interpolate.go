// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"slices"
	"strings"
)

// resolution is the interpolated value of one key as seen from one
// section, or the reason it could not be interpolated.
type resolution struct {
	value string
	err   error
}

// resolutionID names a (requesting section, key) pair.
func resolutionID(section, key string) string {
	return section + "\x00" + key
}

// interpolate resolves every key visible from every section, including
// DEFAULT keys inherited by each section. A key written directly in a
// section must resolve there. A DEFAULT key only has to resolve from
// DEFAULT or from at least one section; where it does not resolve, the
// failure is recorded and returned when that section reads it.
// References see file values only; environment overrides are applied
// per access and never feed interpolation.
func (r *Resolver) interpolate() error {
	r.resolved = make(map[string]resolution)
	contexts := append([]string{DefaultSection}, r.order...)
	for _, section := range contexts {
		for _, key := range r.visibleKeys(section) {
			value, err := r.resolveKey(section, key, map[string]bool{})
			r.resolved[resolutionID(section, key)] = resolution{value: value, err: err}
		}
	}

	for _, section := range r.order {
		for _, key := range sortedKeys(r.sections[section]) {
			if err := r.resolved[resolutionID(section, key)].err; err != nil {
				return err
			}
		}
	}
	for _, key := range sortedKeys(r.sections[DefaultSection]) {
		first := r.resolved[resolutionID(DefaultSection, key)].err
		if first == nil {
			continue
		}
		usable := slices.ContainsFunc(r.order, func(section string) bool {
			return r.resolved[resolutionID(section, key)].err == nil
		})
		if !usable {
			return first
		}
	}
	return nil
}

// visibleKeys returns the keys readable from section: its own keys and
// those inherited from DEFAULT, sorted.
func (r *Resolver) visibleKeys(section string) []string {
	seen := make(map[string]bool)
	for key := range r.sections[section] {
		seen[key] = true
	}
	for key := range r.sections[DefaultSection] {
		seen[key] = true
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func sortedKeys(keys map[string]*entry) []string {
	names := make([]string, 0, len(keys))
	for key := range keys {
		names = append(names, key)
	}
	slices.Sort(names)
	return names
}

// resolveKey returns the value of key as read from section, which must
// be DEFAULT or a loaded section. ${key} references inside the value
// are looked up from section as well, whichever section the raw value
// was written in. visiting holds the pairs on the current resolution
// path and detects cycles.
func (r *Resolver) resolveKey(section, key string, visiting map[string]bool) (string, error) {
	id := resolutionID(section, key)
	if done, ok := r.resolved[id]; ok && done.err == nil {
		return done.value, nil
	}

	found, ok := r.entryFor(section, key)
	if !ok {
		return "", &InterpolationError{Section: section, Key: key, Reason: "no such key"}
	}
	if visiting[id] {
		return "", &InterpolationError{Section: section, Key: key, Reason: "cyclic reference"}
	}
	visiting[id] = true
	defer delete(visiting, id)

	return r.expand(section, key, found.raw, visiting)
}

// expand substitutes the references in raw, which is the value of key
// as read from section. "$$" is a literal dollar sign; any other "$"
// must open a ${key} or ${section:key} reference.
func (r *Resolver) expand(section, key, raw string, visiting map[string]bool) (string, error) {
	if !strings.Contains(raw, "$") {
		return raw, nil
	}

	var out strings.Builder
	for index := 0; index < len(raw); {
		character := raw[index]
		if character != '$' {
			out.WriteByte(character)
			index++
			continue
		}

		rest := raw[index+1:]
		switch {
		case strings.HasPrefix(rest, "$"):
			out.WriteByte('$')
			index += 2
			continue
		case !strings.HasPrefix(rest, "{"):
			return "", &InterpolationError{Section: section, Key: key,
				Reason: fmt.Sprintf("'$' must be followed by '$' or '{', found %q", raw[index:])}
		}

		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return "", &InterpolationError{Section: section, Key: key,
				Reason: fmt.Sprintf("unterminated reference in %q", raw[index:])}
		}
		reference := rest[1:end]

		targetSection, targetKey := section, reference
		switch parts := strings.Split(reference, ":"); len(parts) {
		case 1:
		case 2:
			targetSection, targetKey = parts[0], parts[1]
		default:
			return "", &InterpolationError{Section: section, Key: key, Reference: reference,
				Reason: "more than one ':' in reference"}
		}
		targetKey = strings.ToLower(targetKey)
		if targetSection == "" || targetKey == "" {
			return "", &InterpolationError{Section: section, Key: key, Reference: reference,
				Reason: "empty section or key"}
		}

		if !r.hasSection(targetSection) {
			return "", &InterpolationError{Section: section, Key: key, Reference: reference,
				Reason: "no such section"}
		}
		if _, ok := r.entryFor(targetSection, targetKey); !ok {
			return "", &InterpolationError{Section: section, Key: key, Reference: reference,
				Reason: "no such key"}
		}
		value, err := r.resolveKey(targetSection, targetKey, visiting)
		if err != nil {
			return "", err
		}
		out.WriteString(value)
		index += 1 + end + 1
	}
	return out.String(), nil
}
