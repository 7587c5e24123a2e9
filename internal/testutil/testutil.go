// Package testutil provides shared test helpers for files read by host commands.
package testutil

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates name inside a fresh temporary directory and returns its
// absolute path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	return b
}
