// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package artifact

func publish(tempPath, finalPath string) (bool, error) {
	return linkPublish(tempPath, finalPath)
}
