// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/cowrie/capture/lib/pathguard"
)

// DefaultSection holds values visible from every other section.
const DefaultSection = "DEFAULT"

// environmentPrefix is prepended to SECTION_KEY to form the name of the
// environment variable that overrides a configuration value.
const environmentPrefix = "COWRIE"

// Origin records where a configuration value came from.
type Origin int

const (
	// OriginFile is a value read from one of the loaded files.
	OriginFile Origin = iota + 1

	// OriginEnvironment is a COWRIE_<SECTION>_<KEY> override.
	OriginEnvironment
)

func (o Origin) String() string {
	switch o {
	case OriginFile:
		return "file"
	case OriginEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Value is a resolved configuration value together with its origin.
type Value struct {
	Section string
	Key     string
	Value   string
	Origin  Origin

	// File is the configuration file that supplied the value. Empty for
	// environment overrides.
	File string
}

// Options configures [Load].
type Options struct {
	// InstallRoot is the installation directory. It is the first entry
	// of the default path allow-list. Defaults to the working directory.
	InstallRoot string

	// AllowedRoots overrides the allow-list that path-valued keys are
	// checked against. Defaults to DefaultAllowedRoots(InstallRoot).
	AllowedRoots []string

	// Logger receives path warnings and load diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger

	// LookupEnv reads environment overrides. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// entry is one file-sourced key before interpolation.
type entry struct {
	raw  string
	file string
}

// Resolver answers configuration lookups over the merged file content,
// with environment overrides evaluated on every access. File content is
// immutable after [Load], so a Resolver is safe for concurrent readers.
type Resolver struct {
	sections map[string]map[string]*entry
	order    []string
	files    []string

	// resolved holds the interpolated value of every key visible from
	// every section, keyed by resolutionID.
	resolved map[string]resolution

	guard     *pathguard.Guard
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)
}

// loadOptions match the syntax deployed cowrie.cfg files are written
// in: inline ";" and "#" are part of the value, quotes are kept, and
// indented lines continue the previous value.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:        true,
	AllowPythonMultilineValues: true,
	PreserveSurroundedQuote:    true,
}

// Load reads the given files in increasing precedence: a key in a later
// file replaces the same key from an earlier one. Files that do not
// exist are skipped. Any other read failure or malformed content is a
// *ParseError; an unresolvable ${...} reference is an
// *InterpolationError.
func Load(paths []string, options Options) (*Resolver, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lookupEnv := options.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	installRoot := options.InstallRoot
	if installRoot == "" {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining install root: %w", err)
		}
		installRoot = workingDirectory
	}
	roots := options.AllowedRoots
	if len(roots) == 0 {
		roots = DefaultAllowedRoots(installRoot)
	}
	guard, err := pathguard.New(roots...)
	if err != nil {
		return nil, fmt.Errorf("building path allow-list: %w", err)
	}

	resolver := &Resolver{
		sections:  map[string]map[string]*entry{DefaultSection: {}},
		guard:     guard,
		logger:    logger,
		lookupEnv: lookupEnv,
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}

		if err := checkSectionHeader(data); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		file, err := ini.LoadSources(loadOptions, data)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		resolver.merge(path, file)
		resolver.files = append(resolver.files, path)
	}

	if err := resolver.interpolate(); err != nil {
		return nil, err
	}

	if len(resolver.files) == 0 {
		logger.Info("no configuration file found", "searched", paths)
	} else {
		logger.Info("read configuration", "files", resolver.files)
	}
	return resolver, nil
}

// merge folds one parsed file into the resolver, replacing earlier keys.
func (r *Resolver) merge(path string, file *ini.File) {
	for _, section := range file.Sections() {
		name := section.Name()
		keys, ok := r.sections[name]
		if !ok {
			keys = make(map[string]*entry)
			r.sections[name] = keys
			r.order = append(r.order, name)
		}
		for _, key := range section.Keys() {
			keys[strings.ToLower(key.Name())] = &entry{raw: key.Value(), file: path}
		}
	}
}

// checkSectionHeader rejects content whose first setting comes before
// any section header. The parser would otherwise file such keys under
// DEFAULT.
func checkSectionHeader(data []byte) error {
	content := strings.TrimPrefix(string(data), "\ufeff")
	for number, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}
		if trimmed[0] == '[' {
			return nil
		}
		return fmt.Errorf("line %d: %q appears before any section header", number+1, trimmed)
	}
	return nil
}

// hasSection reports whether section is DEFAULT or appears in a loaded
// file.
func (r *Resolver) hasSection(section string) bool {
	_, ok := r.sections[section]
	return ok
}

// entryFor finds a key in section, falling back to DEFAULT. Keys of a
// section that no file defines are not found, even in DEFAULT.
func (r *Resolver) entryFor(section, key string) (*entry, bool) {
	keys, ok := r.sections[section]
	if !ok {
		return nil, false
	}
	if found, ok := keys[key]; ok {
		return found, true
	}
	found, ok := r.sections[DefaultSection][key]
	return found, ok
}

// EnvironmentKey returns the name of the environment variable that
// overrides [section] key: COWRIE_<SECTION>_<KEY>, uppercased.
func EnvironmentKey(section, key string) string {
	return strings.ToUpper(environmentPrefix + "_" + section + "_" + key)
}

// lookup returns the value for [section] key: a *MissingKeyError when
// nothing supplies it, or the *InterpolationError recorded at load when
// an inherited DEFAULT value cannot be resolved from section.
func (r *Resolver) lookup(section, key string) (Value, error) {
	key = strings.ToLower(key)
	if value, ok := r.lookupEnv(EnvironmentKey(section, key)); ok {
		return Value{Section: section, Key: key, Value: value, Origin: OriginEnvironment}, nil
	}
	found, ok := r.entryFor(section, key)
	if !ok {
		return Value{}, &MissingKeyError{Section: section, Key: key}
	}
	done := r.resolved[resolutionID(section, key)]
	if done.err != nil {
		return Value{}, done.err
	}
	return Value{Section: section, Key: key, Value: done.value, Origin: OriginFile, File: found.file}, nil
}

// Lookup returns the value for [section] key and where it came from.
// An environment override wins even when set to the empty string.
// Lookup reports false for a key that cannot be interpolated; use
// [Resolver.Get] to see why. Lookup does not apply path validation.
func (r *Resolver) Lookup(section, key string) (Value, bool) {
	value, err := r.lookup(section, key)
	return value, err == nil
}

// Has reports whether [section] key is set in the environment or in
// any loaded file.
func (r *Resolver) Has(section, key string) bool {
	key = strings.ToLower(key)
	if _, ok := r.lookupEnv(EnvironmentKey(section, key)); ok {
		return true
	}
	_, ok := r.entryFor(section, key)
	return ok
}

// Get returns the value for [section] key. Path-valued keys are checked
// against the allow-list; a violation is logged as a warning and the
// value is returned regardless. A key found nowhere is a
// *MissingKeyError.
func (r *Resolver) Get(section, key string) (string, error) {
	value, err := r.lookup(section, key)
	if err != nil {
		return "", err
	}
	r.checkPath(value)
	return value.Value, nil
}

// GetDefault is [Resolver.Get] with fallback returned for a missing key.
// A fallback for a path-valued key is checked like any other value. A
// value that cannot be interpolated is logged and replaced by fallback.
func (r *Resolver) GetDefault(section, key, fallback string) string {
	value, err := r.lookup(section, key)
	if err != nil {
		if !errors.Is(err, ErrMissingKey) {
			r.logger.Warn("using fallback for unresolvable configuration value",
				"section", section,
				"key", strings.ToLower(key),
				"fallback", fallback,
				"error", err,
			)
		}
		value = Value{Section: section, Key: strings.ToLower(key), Value: fallback}
	}
	r.checkPath(value)
	return value.Value
}

// booleanStates are the spellings accepted by GetBool, matched
// case-insensitively.
var booleanStates = map[string]bool{
	"1": true, "yes": true, "true": true, "on": true,
	"0": false, "no": false, "false": false, "off": false,
}

// GetBool returns [section] key interpreted as a boolean.
func (r *Resolver) GetBool(section, key string) (bool, error) {
	raw, err := r.Get(section, key)
	if err != nil {
		return false, err
	}
	value, ok := booleanStates[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return false, fmt.Errorf("configuration key [%s] %s: not a boolean: %q", section, key, raw)
	}
	return value, nil
}

// GetBoolDefault returns fallback when the key is missing. A present but
// malformed value is still an error.
func (r *Resolver) GetBoolDefault(section, key string, fallback bool) (bool, error) {
	if !r.Has(section, key) {
		return fallback, nil
	}
	return r.GetBool(section, key)
}

// GetInt returns [section] key interpreted as a base-10 integer.
func (r *Resolver) GetInt(section, key string) (int, error) {
	raw, err := r.Get(section, key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("configuration key [%s] %s: %w", section, key, err)
	}
	return value, nil
}

// GetIntDefault returns fallback when the key is missing. A present but
// malformed value is still an error.
func (r *Resolver) GetIntDefault(section, key string, fallback int) (int, error) {
	if !r.Has(section, key) {
		return fallback, nil
	}
	return r.GetInt(section, key)
}

// Sections returns the section names from all loaded files in first-seen
// order, excluding DEFAULT.
func (r *Resolver) Sections() []string {
	var names []string
	for _, name := range r.order {
		if name != DefaultSection {
			names = append(names, name)
		}
	}
	return names
}

// Files returns the configuration files that were actually read, in
// precedence order.
func (r *Resolver) Files() []string {
	return append([]string(nil), r.files...)
}
