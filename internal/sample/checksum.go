package sample

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FileChecksum calculates the SHA256 checksum of an input file
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ResourceError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", &ResourceError{Op: "read", Path: path, Err: err}
	}

	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
