// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/cowrie/capture/lib/testutil"
)

func TestInterpolation(t *testing.T) {
	dir := t.TempDir()
	dist := writeConfig(t, dir, "cowrie.cfg.dist", `
[DEFAULT]
root = /srv/cowrie

[honeypot]
state_path = ${root}/var/lib/cowrie
download_path = ${state_path}/downloads
price = $$5

[output_jsonlog]
logfile = ${honeypot:log_path}/cowrie.json
`)
	local := writeConfig(t, dir, "cowrie.cfg", `
[honeypot]
log_path = ${root}/var/log/cowrie
`)
	resolver := loadForTest(t, []string{dist, local}, testutil.NewLogBuffer())

	tests := []struct {
		section, key, want string
	}{
		{"honeypot", "state_path", "/srv/cowrie/var/lib/cowrie"},
		{"honeypot", "download_path", "/srv/cowrie/var/lib/cowrie/downloads"},
		{"honeypot", "price", "$5"},
		{"output_jsonlog", "logfile", "/srv/cowrie/var/log/cowrie/cowrie.json"},
		{"output_jsonlog", "root", "/srv/cowrie"},
	}
	for _, test := range tests {
		got, err := resolver.Get(test.section, test.key)
		if err != nil {
			t.Errorf("Get(%s, %s) failed: %v", test.section, test.key, err)
			continue
		}
		if got != test.want {
			t.Errorf("Get(%s, %s) = %q, want %q", test.section, test.key, got, test.want)
		}
	}
}

func TestInterpolationEnvironmentNotSubstituted(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cowrie.cfg", `
[honeypot]
state_path = /var/lib/cowrie
download_path = ${state_path}/downloads
`)
	resolver, err := Load([]string{path}, Options{
		AllowedRoots: []string{"/var/lib/cowrie"},
		Logger:       testutil.NewLogBuffer().Logger(),
		LookupEnv: func(key string) (string, bool) {
			if key == "COWRIE_HONEYPOT_STATE_PATH" {
				return "/elsewhere", true
			}
			return "", false
		},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, err := resolver.Get("honeypot", "download_path")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "/var/lib/cowrie/downloads" {
		t.Errorf("Get = %q; references resolve against file values only", got)
	}
}

func TestInterpolationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown key",
			content: "[honeypot]\ndownload_path = ${missing}/downloads\n",
		},
		{
			name:    "unknown section",
			content: "[honeypot]\ndownload_path = ${nowhere:state_path}\n",
		},
		{
			name:    "self reference",
			content: "[honeypot]\nstate_path = ${state_path}/x\n",
		},
		{
			name:    "indirect cycle",
			content: "[a]\nx = ${b:y}\n[b]\ny = ${c:z}\n[c]\nz = ${a:x}\n",
		},
		{
			name:    "bare dollar",
			content: "[honeypot]\nbanner = costs $5\n",
		},
		{
			name:    "unterminated",
			content: "[honeypot]\nstate_path = ${root\n",
		},
		{
			name:    "too many colons",
			content: "[honeypot]\nstate_path = ${a:b:c}\n",
		},
		{
			name:    "empty reference",
			content: "[honeypot]\nstate_path = ${}\n",
		},
		{
			name:    "unknown section with key in DEFAULT",
			content: "[DEFAULT]\nname = fromdefault\n[honeypot]\nhostname = ${nosuchsection:name}\n",
		},
		{
			name:    "DEFAULT value resolvable nowhere",
			content: "[DEFAULT]\nlog_file = ${log_dir}/cowrie.log\n[honeypot]\nhostname = a\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, "cowrie.cfg", test.content)
			_, err := Load([]string{path}, Options{
				AllowedRoots: []string{dir},
				Logger:       testutil.NewLogBuffer().Logger(),
				LookupEnv:    noEnvironment,
			})
			var interpolationError *InterpolationError
			if !errors.As(err, &interpolationError) {
				t.Fatalf("Load error = %v, want *InterpolationError", err)
			}
		})
	}
}

func TestInterpolationDefaultResolvesFromRequestingSection(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cowrie.cfg", `
[DEFAULT]
log_file = ${log_dir}/cowrie.log
data = ${base}/data
base = /srv

[output_jsonlog]
log_dir = /var/log/cowrie

[output_textlog]
base = /opt

[honeypot]
hostname = svr04
`)
	logs := testutil.NewLogBuffer()
	resolver := loadForTest(t, []string{path}, logs)

	tests := []struct {
		section, key, want string
	}{
		{"output_jsonlog", "log_file", "/var/log/cowrie/cowrie.log"},
		{"output_textlog", "data", "/opt/data"},
		{"honeypot", "data", "/srv/data"},
	}
	for _, test := range tests {
		got, err := resolver.Get(test.section, test.key)
		if err != nil {
			t.Errorf("Get(%s, %s) failed: %v", test.section, test.key, err)
			continue
		}
		if got != test.want {
			t.Errorf("Get(%s, %s) = %q, want %q", test.section, test.key, got, test.want)
		}
	}

	// [honeypot] inherits log_file but has no log_dir to fill it in.
	_, err := resolver.Get("honeypot", "log_file")
	var interpolationError *InterpolationError
	if !errors.As(err, &interpolationError) {
		t.Fatalf("Get(honeypot, log_file) error = %v, want *InterpolationError", err)
	}
	if _, ok := resolver.Lookup("honeypot", "log_file"); ok {
		t.Error("Lookup should not report an unresolvable value")
	}
	if !resolver.Has("honeypot", "log_file") {
		t.Error("Has should still report the inherited key")
	}
	if got := resolver.GetDefault("honeypot", "log_file", "fallback"); got != "fallback" {
		t.Errorf("GetDefault = %q, want fallback", got)
	}
	if warnings := logs.AtLevel(slog.LevelWarn); len(warnings) != 1 || warnings[0].Attrs["key"] != "log_file" {
		t.Errorf("warnings = %+v, want one for log_file", warnings)
	}
}

func TestInterpolationUnknownSectionIsMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cowrie.cfg", "[DEFAULT]\nname = fromdefault\n[honeypot]\nhostname = a\n")
	resolver := loadForTest(t, []string{path}, testutil.NewLogBuffer())

	if got, err := resolver.Get("honeypot", "name"); err != nil || got != "fromdefault" {
		t.Errorf("Get(honeypot, name) = %q, %v; want the DEFAULT value", got, err)
	}
	if _, err := resolver.Get("nosuchsection", "name"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("Get(nosuchsection, name) error = %v, want ErrMissingKey", err)
	}
}
