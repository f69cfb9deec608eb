// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that stamps records with the current time accepts a Clock
// instead of calling time.Now directly. In production, Real() provides
// the standard library behavior. In tests, Fake() provides a clock that
// moves only when told to:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	journal, err := capture.OpenJournal(path, c)
//	// ... append an event ...
//	c.Advance(5 * time.Second)
package clock
