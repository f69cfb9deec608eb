// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// stdinWith returns a regular file holding content, positioned at the
// start, for use as standard input.
func stdinWith(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { file.Close() })
	return file
}

func writeTestConfig(t *testing.T) (configPath, root string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	configPath = filepath.Join(root, "cowrie.cfg")
	content := "[honeypot]\nstate_path = " + root + "\ndownload_path = ${state_path}/downloads\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath, root
}

func TestRunStoresStdin(t *testing.T) {
	configPath, root := writeTestConfig(t)

	var stdout, stderr bytes.Buffer
	args := []string{"--config", configPath, "--install-root", root, "--label", "sample", "--session", "s1"}
	if err := run(args, stdinWith(t, "abc"), &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr.String())
	}

	const digest = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	want := digest + " " + filepath.Join(root, "downloads", digest) + " published\n"
	if stdout.String() != want {
		t.Errorf("stdout = %q, want %q", stdout.String(), want)
	}
	if !strings.Contains(stderr.String(), `"msg":"stored capture"`) {
		t.Errorf("stderr should carry a JSON log record, got %s", stderr.String())
	}

	stdout.Reset()
	if err := run(args, stdinWith(t, "abc"), &stdout, &stderr); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !strings.HasSuffix(stdout.String(), " duplicate\n") {
		t.Errorf("second run stdout = %q, want duplicate", stdout.String())
	}
}

func TestRunEmptyInput(t *testing.T) {
	configPath, root := writeTestConfig(t)
	args := []string{"--config", configPath, "--install-root", root}

	var stdout, stderr bytes.Buffer
	if err := run(args, stdinWith(t, ""), &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stdout.String() != "- - discarded\n" {
		t.Errorf("stdout = %q, want discarded line", stdout.String())
	}

	stdout.Reset()
	if err := run(append(args, "--keep-empty"), stdinWith(t, ""), &stdout, &stderr); err != nil {
		t.Fatalf("run --keep-empty failed: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855 ") {
		t.Errorf("stdout = %q, want the empty digest", stdout.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := [][]string{
		{"--log-level", "loud"},
		{"unexpected"},
		{"--no-such-flag"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		err := run(args, stdinWith(t, "x"), &stdout, &stderr)
		if !errors.Is(err, errUsage) {
			t.Errorf("run(%q) error = %v, want a usage error", args, err)
		}
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--version"}, stdinWith(t, ""), &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "cowrie-capture ") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), runtime.Version()) {
		t.Errorf("stdout = %q, want the Go toolchain version", stdout.String())
	}
}

func TestRunMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "cowrie.cfg")
	if err := os.WriteFile(configPath, []byte("[honeypot\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", configPath, "--install-root", dir}, stdinWith(t, "x"), &stdout, &stderr)
	if err == nil || errors.Is(err, errUsage) {
		t.Errorf("run error = %v, want a configuration error", err)
	}
}

func TestRunJournal(t *testing.T) {
	configPath, root := writeTestConfig(t)
	base := []string{"--config", configPath, "--install-root", root}

	var stdout, stderr bytes.Buffer
	for _, content := range []string{"first", "second", "first"} {
		if err := run(append(base, "--session", "s-"+content), stdinWith(t, content), &stdout, &stderr); err != nil {
			t.Fatalf("capture failed: %v", err)
		}
	}

	stdout.Reset()
	if err := run(append(base, "--journal"), stdinWith(t, ""), &stdout, &stderr); err != nil {
		t.Fatalf("run --journal failed: %v", err)
	}

	decoder := yaml.NewDecoder(&stdout)
	var entries []journalEntry
	for {
		var entry journalEntry
		if err := decoder.Decode(&entry); err != nil {
			break
		}
		entries = append(entries, entry)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d journal entries, want 3", len(entries))
	}
	if entries[0].Status != "published" || entries[2].Status != "duplicate" {
		t.Errorf("statuses = %s, %s; want published, duplicate", entries[0].Status, entries[2].Status)
	}
	if entries[0].Hash != entries[2].Hash || entries[0].Session != "s-first" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestRunMetricsTextfile(t *testing.T) {
	configPath, root := writeTestConfig(t)
	metricsPath := filepath.Join(t.TempDir(), "capture.prom")

	var stdout, stderr bytes.Buffer
	args := []string{"--config", configPath, "--install-root", root, "--metrics-textfile", metricsPath}
	if err := run(args, stdinWith(t, "metered"), &stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	content, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if !strings.Contains(string(content), `cowrie_captures_total{status="published"} 1`) {
		t.Errorf("metrics file missing published counter:\n%s", content)
	}
}
