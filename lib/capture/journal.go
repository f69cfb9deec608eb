// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cowrie/capture/lib/artifact"
	"github.com/cowrie/capture/lib/clock"
	"github.com/cowrie/capture/lib/codec"
)

// JournalName is the journal file name inside the state directory.
const JournalName = "capture-journal.cbor"

// journalMode keeps the audit trail out of reach of other users.
const journalMode = 0o640

// ErrJournalClosed is returned by Append after Close.
var ErrJournalClosed = errors.New("capture journal is closed")

// Event records one finalized capture.
type Event struct {
	// ID uniquely identifies the event across journals.
	ID string `cbor:"id,omitempty"`

	// Time is when the capture was finalized, in UTC.
	Time time.Time `cbor:"time"`

	// Session identifies the attacker session that produced the
	// content. Empty for captures made outside a session.
	Session string `cbor:"session,omitempty"`

	// Label is the caller's description of the capture, typically the
	// command or transfer that produced it.
	Label string `cbor:"label"`

	Hash   string          `cbor:"hash"`
	Path   string          `cbor:"path"`
	Size   int64           `cbor:"size"`
	Status artifact.Status `cbor:"status"`
}

// Journal appends capture events to a file. It is safe for concurrent
// use; the lock covers only this file.
type Journal struct {
	path  string
	clock clock.Clock

	mu   sync.Mutex
	file *os.File
}

// OpenJournal opens path for appending, creating it if needed. The
// directory must already exist.
func OpenJournal(path string, clk clock.Clock) (*Journal, error) {
	if clk == nil {
		clk = clock.Real()
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, journalMode)
	if err != nil {
		return nil, fmt.Errorf("opening capture journal: %w", err)
	}
	return &Journal{path: path, clock: clk, file: file}, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes event as one CBOR item. A zero Time is replaced with
// the journal clock's current time.
func (j *Journal) Append(event Event) error {
	if event.Time.IsZero() {
		event.Time = j.clock.Now()
	}
	event.Time = event.Time.UTC()

	data, err := codec.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding capture event: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return ErrJournalClosed
	}
	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("appending to %s: %w", j.path, err)
	}
	return nil
}

// Close closes the journal file. Further appends fail with
// ErrJournalClosed; closing twice is a no-op.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// ReadJournal decodes every event in the journal at path. If the file
// ends in a partial record, the complete events before it are returned
// together with the error.
func ReadJournal(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture journal: %w", err)
	}
	defer file.Close()

	var events []Event
	decoder := codec.NewDecoder(file)
	for {
		var event Event
		err := decoder.Decode(&event)
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, fmt.Errorf("decoding %s record %d: %w", path, len(events), err)
		}
		events = append(events, event)
	}
}
