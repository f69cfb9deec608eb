// Copyright 2026 The Cowrie Capture Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DigestLength is the length of a hex-encoded SHA-256 digest.
const DigestLength = 2 * sha256.Size

// EmptyDigest is the SHA-256 digest of zero bytes.
const EmptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// hashFile streams the file at path through SHA-256 and returns the raw
// sum and the number of bytes read. The file is read from disk rather
// than from any in-memory copy, so content accumulated across many
// writes is hashed exactly as it was persisted.
func hashFile(path string) ([]byte, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return nil, 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hasher.Sum(nil), size, nil
}

// formatDigest is the hex encoding used for artifact names.
func formatDigest(sum []byte) string {
	return hex.EncodeToString(sum)
}

// ValidDigest reports whether digest is exactly DigestLength characters
// drawn from 0-9 and a-f. Uppercase hex is rejected: artifact names have
// a single spelling.
func ValidDigest(digest string) bool {
	if len(digest) != DigestLength {
		return false
	}
	for index := 0; index < len(digest); index++ {
		character := digest[index]
		if (character < '0' || character > '9') && (character < 'a' || character > 'f') {
			return false
		}
	}
	return true
}
