// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// LogRecord is one captured log call. Attribute values are stored in
// their slog string form.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogBuffer collects log records in memory. It is safe for concurrent
// use.
type LogBuffer struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewLogBuffer returns an empty LogBuffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

// Logger returns a logger that records every level into the buffer.
func (b *LogBuffer) Logger() *slog.Logger {
	return slog.New(&bufferHandler{buffer: b})
}

// Records returns a copy of everything captured so far.
func (b *LogBuffer) Records() []LogRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.records)
}

// AtLevel returns the captured records with exactly the given level.
func (b *LogBuffer) AtLevel(level slog.Level) []LogRecord {
	var matched []LogRecord
	for _, record := range b.Records() {
		if record.Level == level {
			matched = append(matched, record)
		}
	}
	return matched
}

func (b *LogBuffer) append(record LogRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, record)
}

type bufferHandler struct {
	buffer *LogBuffer
	attrs  []slog.Attr
}

func (h *bufferHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *bufferHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		attrs[attr.Key] = attr.Value.String()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.String()
		return true
	})
	h.buffer.append(LogRecord{Level: record.Level, Message: record.Message, Attrs: attrs})
	return nil
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bufferHandler{buffer: h.buffer, attrs: append(slices.Clone(h.attrs), attrs...)}
}

// WithGroup flattens groups; tests match on attribute keys only.
func (h *bufferHandler) WithGroup(string) slog.Handler { return h }
