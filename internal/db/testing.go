// Test helpers for packages that need an index database. In-memory databases
// keep tests fast and are cleaned up via t.Cleanup.
package db

import "testing"

// NewTestDB creates an in-memory, schema-migrated index for testing. The
// database is closed automatically when the test completes.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	d, err := OpenInMemory()
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}
