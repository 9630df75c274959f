// ABOUTME: Test utilities for creating isolated KV clients
// ABOUTME: Uses temporary directories with a local BadgerDB for test isolation

package charm

import (
	"path/filepath"
	"testing"
)

// NewTestClient creates a client over a BadgerDB in a test temp directory,
// closed automatically when the test ends.
func NewTestClient(t *testing.T) *Client {
	t.Helper()

	c, bkv, err := OpenLocal(filepath.Join(t.TempDir(), AppName))
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}

	t.Cleanup(func() {
		if err := bkv.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return c
}
