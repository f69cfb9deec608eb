// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package artifact

import (
	"os"

	"golang.org/x/sys/unix"
)

// processUmask returns the current umask. The kernel only exposes it
// through a set-and-restore, so this is called once per store rather
// than per file.
func processUmask() os.FileMode {
	mask := unix.Umask(0)
	unix.Umask(mask)
	return os.FileMode(mask) & os.ModePerm
}
