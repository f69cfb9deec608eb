// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// publish atomically moves tempPath to finalPath unless finalPath
// already exists, in which case it reports false and leaves tempPath in
// place. Kernels or filesystems without RENAME_NOREPLACE fall back to
// [linkPublish].
func publish(tempPath, finalPath string) (bool, error) {
	err := unix.Renameat2(unix.AT_FDCWD, tempPath, unix.AT_FDCWD, finalPath, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.EEXIST):
		return false, nil
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL):
		return linkPublish(tempPath, finalPath)
	}
	return false, &os.LinkError{Op: "renameat2", Old: tempPath, New: finalPath, Err: err}
}
