// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"io/fs"
	"os"
)

// linkPublish publishes tempPath at finalPath with a hard link, which
// fails rather than replacing an existing destination. It reports false
// when the destination already exists. On success the temporary name is
// removed. If the filesystem cannot link at all, a plain rename is the
// last resort; it may replace a concurrently published file, which holds
// identical content.
func linkPublish(tempPath, finalPath string) (bool, error) {
	err := os.Link(tempPath, finalPath)
	if err == nil {
		os.Remove(tempPath)
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}

	if _, statErr := os.Lstat(finalPath); statErr == nil {
		return false, nil
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return false, err
	}
	return true, nil
}
