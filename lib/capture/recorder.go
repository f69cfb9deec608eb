// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cowrie/capture/lib/artifact"
	"github.com/cowrie/capture/lib/clock"
	"github.com/cowrie/capture/lib/config"
)

// DefaultDownloadPath is the store root used when [honeypot]
// download_path is not configured.
const DefaultDownloadPath = "."

// RecorderOptions configures [NewRecorder].
type RecorderOptions struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Clock stamps journal events. Defaults to clock.Real().
	Clock clock.Clock

	// Registerer receives the capture counters. Nil leaves them
	// unregistered.
	Registerer prometheus.Registerer
}

// Recorder stores captured streams and journals the results.
type Recorder struct {
	store   *artifact.Store
	journal *Journal
	metrics *metrics
	logger  *slog.Logger
}

// NewRecorder builds the artifact store from the resolver's
// configuration and opens the journal if a state path is configured.
func NewRecorder(resolver *config.Resolver, options RecorderOptions) (*Recorder, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root := resolver.GetDefault("honeypot", "download_path", DefaultDownloadPath)
	store, err := artifact.NewStore(root, artifact.StoreOptions{Logger: logger})
	if err != nil {
		return nil, err
	}

	recorder := &Recorder{store: store, logger: logger}
	if resolver.Has("honeypot", "state_path") {
		statePath, err := resolver.Get("honeypot", "state_path")
		if err != nil {
			return nil, err
		}
		journal, err := OpenJournal(filepath.Join(statePath, JournalName), options.Clock)
		if err != nil {
			return nil, err
		}
		recorder.journal = journal
	}

	// Register last so a failed construction leaves the registry
	// untouched and can be retried.
	recorder.metrics, err = newMetrics(options.Registerer)
	if err != nil {
		recorder.Close()
		return nil, fmt.Errorf("registering capture metrics: %w", err)
	}

	logger.Info("artifact store ready",
		"root", store.Root(),
		"journal", recorder.JournalPath(),
	)
	return recorder, nil
}

// Store returns the underlying artifact store.
func (r *Recorder) Store() *artifact.Store {
	return r.store
}

// JournalPath returns the journal file, or "" if journaling is off.
func (r *Recorder) JournalPath() string {
	if r.journal == nil {
		return ""
	}
	return r.journal.Path()
}

// Capture copies reader into a new artifact and finalizes it. If the
// copy fails the partial capture is discarded and the read or write
// error is returned. Published and duplicate results are journaled; a
// journal failure is returned alongside the result, since the content
// is already stored.
func (r *Recorder) Capture(session, label string, reader io.Reader, keepEmpty bool) (artifact.Result, error) {
	logger := r.logger.With("session", session, "label", label)

	handle, err := r.store.Open(label)
	if err != nil {
		r.metrics.failures.Inc()
		return artifact.Result{}, err
	}
	if _, err := io.Copy(handle, reader); err != nil {
		r.metrics.failures.Inc()
		if discardErr := handle.Discard(); discardErr != nil {
			logger.Warn("discarding partial capture failed", "error", discardErr)
		}
		return artifact.Result{}, fmt.Errorf("capturing %q: %w", label, err)
	}

	result, err := handle.Close(keepEmpty)
	if err != nil {
		r.metrics.failures.Inc()
		logger.Error("capture not stored", "error", err)
		return artifact.Result{}, err
	}
	r.metrics.observe(result)

	switch result.Status {
	case artifact.StatusDiscarded:
		logger.Debug("discarded empty capture")
		return result, nil
	case artifact.StatusDuplicate:
		logger.Info("not storing duplicate content",
			"hash", result.Artifact.Hash,
			"path", result.Artifact.Path,
		)
	default:
		logger.Info("stored capture",
			"hash", result.Artifact.Hash,
			"path", result.Artifact.Path,
			"size", result.Artifact.Size,
		)
	}

	if r.journal != nil {
		err := r.journal.Append(Event{
			ID:      uuid.NewString(),
			Session: session,
			Label:   label,
			Hash:    result.Artifact.Hash,
			Path:    result.Artifact.Path,
			Size:    result.Artifact.Size,
			Status:  result.Status,
		})
		if err != nil {
			return result, fmt.Errorf("journaling capture: %w", err)
		}
	}
	return result, nil
}

// Close closes the journal.
func (r *Recorder) Close() error {
	if r.journal == nil {
		return nil
	}
	return r.journal.Close()
}
