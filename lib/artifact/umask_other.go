// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package artifact

import "os"

// processUmask returns the conventional default where the platform has
// no umask.
func processUmask() os.FileMode {
	return 0o022
}
