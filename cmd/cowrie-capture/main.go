// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/cowrie/capture/lib/capture"
	"github.com/cowrie/capture/lib/clock"
	"github.com/cowrie/capture/lib/config"
	"github.com/cowrie/capture/lib/version"
)

// errUsage marks errors caused by how the tool was invoked.
var errUsage = errors.New("usage error")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	var (
		configPaths []string
		installRoot string
		label       string
		session     string
		keepEmpty   bool
		logLevel    string
		showVersion bool
		showJournal bool
		metricsFile string
	)

	flagSet := pflag.NewFlagSet("cowrie-capture", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringArrayVar(&configPaths, "config", nil, "configuration file, lowest precedence first (repeatable; default: the standard search list)")
	flagSet.StringVar(&installRoot, "install-root", "", "installation directory (default: working directory)")
	flagSet.StringVar(&label, "label", "stdin", "description recorded with the capture")
	flagSet.StringVar(&session, "session", "", "session identifier recorded in the journal")
	flagSet.BoolVar(&keepEmpty, "keep-empty", false, "publish empty input instead of discarding it")
	flagSet.StringVar(&logLevel, "log-level", "info", "minimum log level: debug, info, warn, error")
	flagSet.BoolVar(&showJournal, "journal", false, "print the capture journal as YAML instead of capturing")
	flagSet.StringVar(&metricsFile, "metrics-textfile", "", "write capture counters to this file in Prometheus text format")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	flagSet.Usage = func() { printHelp(flagSet, stderr) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if showVersion {
		fmt.Fprintf(stdout, "cowrie-capture %s\n", version.Full())
		return nil
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, extra[0])
	}

	logger, err := newLogger(stderr, logLevel)
	if err != nil {
		return err
	}

	if !showJournal && term.IsTerminal(int(stdin.Fd())) {
		return fmt.Errorf("%w: standard input is a terminal; pipe the content to capture", errUsage)
	}

	if installRoot == "" {
		installRoot, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("determining install root: %w", err)
		}
	}
	if len(configPaths) == 0 {
		configPaths = config.DefaultPaths(installRoot)
	}

	resolver, err := config.Load(configPaths, config.Options{
		InstallRoot: installRoot,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	recorder, err := capture.NewRecorder(resolver, capture.RecorderOptions{
		Logger:     logger,
		Clock:      clock.Real(),
		Registerer: registry,
	})
	if err != nil {
		return err
	}
	defer recorder.Close()

	if showJournal {
		return printJournal(recorder.JournalPath(), stdout)
	}

	result, captureErr := recorder.Capture(session, label, stdin, keepEmpty)
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	if captureErr != nil {
		return captureErr
	}
	if result.Artifact.Hash == "" {
		fmt.Fprintf(stdout, "- - %s\n", result.Status)
		return nil
	}
	fmt.Fprintf(stdout, "%s %s %s\n", result.Artifact.Hash, result.Artifact.Path, result.Status)
	return nil
}

// journalEntry is the YAML view of a journal event.
type journalEntry struct {
	ID      string `yaml:"id,omitempty"`
	Time    string `yaml:"time"`
	Session string `yaml:"session,omitempty"`
	Label   string `yaml:"label"`
	Hash    string `yaml:"hash"`
	Path    string `yaml:"path"`
	Size    int64  `yaml:"size"`
	Status  string `yaml:"status"`
}

// printJournal writes every journal event to w as a YAML document.
func printJournal(path string, w io.Writer) error {
	if path == "" {
		return errors.New("no capture journal: [honeypot] state_path is not set")
	}
	events, readErr := capture.ReadJournal(path)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	for _, event := range events {
		entry := journalEntry{
			ID:      event.ID,
			Time:    event.Time.Format(time.RFC3339Nano),
			Session: event.Session,
			Label:   event.Label,
			Hash:    event.Hash,
			Path:    event.Path,
			Size:    event.Size,
			Status:  event.Status.String(),
		}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("encoding journal entry: %w", err)
		}
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encoding journal: %w", err)
	}
	return readErr
}

// newLogger returns a JSON logger on w at the named level and installs
// it as the slog default.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("%w: --log-level: %w", errUsage, err)
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parsed}))
	slog.SetDefault(logger)
	return logger, nil
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `cowrie-capture stores standard input as a content-addressed artifact.

The artifact directory is [honeypot] download_path from the Cowrie
configuration. When [honeypot] state_path is set, the capture is also
appended to the capture journal there. Any setting can be overridden
with COWRIE_<SECTION>_<KEY>.

Output is one line: <sha256> <path> <published|duplicate|discarded>.
With --journal, the journal is printed as a stream of YAML documents
instead and standard input is not read.

Usage:
  some-command | cowrie-capture [flags]

Examples:
  # Store a sample using the configuration in /opt/cowrie
  cowrie-capture --install-root /opt/cowrie --label sample.bin < sample.bin

  # Override the artifact directory for one run
  COWRIE_HONEYPOT_DOWNLOAD_PATH=/tmp/captures cowrie-capture < sample.bin

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
