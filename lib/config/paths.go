// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cowrie/capture/lib/pathguard"
)

// pathKeys are the settings whose values name filesystem locations. They
// are checked against the allow-list on every access.
var pathKeys = map[string]map[string]bool{
	"honeypot": {
		"download_path": true,
		"contents_path": true,
		"state_path":    true,
		"log_path":      true,
		"txtcmds_path":  true,
	},
	"shell": {
		"filesystem": true,
	},
}

// IsPathKey reports whether [section] key holds a filesystem path.
func IsPathKey(section, key string) bool {
	return pathKeys[section][strings.ToLower(key)]
}

// PathKeys returns the path-valued settings as "section.key", sorted.
func PathKeys() []string {
	var names []string
	for section, keys := range pathKeys {
		for key := range keys {
			names = append(names, section+"."+key)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultAllowedRoots returns the standard allow-list for path-valued
// keys: the install root followed by the system locations a packaged
// deployment uses.
func DefaultAllowedRoots(installRoot string) []string {
	return []string{
		installRoot,
		"/var/lib/cowrie",
		"/var/log/cowrie",
		"/etc/cowrie",
		"/tmp",
		"/home",
	}
}

// DefaultPaths returns the configuration files read at startup, lowest
// precedence first. Missing entries are skipped by [Load].
func DefaultPaths(installRoot string) []string {
	return []string{
		filepath.Join(installRoot, "etc", "cowrie.cfg.dist"),
		"/etc/cowrie/cowrie.cfg",
		filepath.Join(installRoot, "etc", "cowrie.cfg"),
		filepath.Join(installRoot, "cowrie.cfg"),
	}
}

// checkPath validates a path-valued setting. A violation is logged and
// otherwise ignored: a misconfigured deployment keeps running, loudly.
func (r *Resolver) checkPath(value Value) {
	if !IsPathKey(value.Section, value.Key) {
		return
	}

	_, err := r.guard.Validate(expandHome(value.Value))
	if err == nil {
		return
	}

	attributes := []any{
		"section", value.Section,
		"key", value.Key,
		"path", value.Value,
		"allowed_roots", r.guard.Roots(),
		"error", err,
	}
	if value.Origin != 0 {
		attributes = append(attributes, "origin", value.Origin.String())
	} else {
		attributes = append(attributes, "origin", "fallback")
	}
	var violation *pathguard.Violation
	if errors.As(err, &violation) && violation.Resolved != "" {
		attributes = append(attributes, "resolved", violation.Resolved)
	}
	r.logger.Warn("configuration path is outside allowed directories", attributes...)
}

// expandHome replaces a leading "~" with the home directory, the way a
// shell would, and maps the empty string to the working directory.
func expandHome(path string) string {
	if path == "" {
		return "."
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
