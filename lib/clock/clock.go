// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the current time. Production code injects Real();
// tests inject Fake() so timestamps are reproducible.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
