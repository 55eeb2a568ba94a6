package testutil

import (
	"context"
	"database/sql"
	"testing"

	"canteen-backend/internal/db"
)

// SetupDB opens a fresh in-memory database with the schema applied, it is
// closed when the test finishes.
func SetupDB(t testing.TB) *sql.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// SetupSeededDB is SetupDB with the given standard extras already inserted.
func SetupSeededDB(t testing.TB, extras []db.InsertExtraParams) *sql.DB {
	t.Helper()

	database := SetupDB(t)
	_, err := db.New(database).InsertExtras(context.Background(), extras)
	if err != nil {
		t.Fatal(err)
	}
	return database
}
