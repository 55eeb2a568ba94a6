package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

func isRemote(url string) bool {
	for _, scheme := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

// Open opens the database at url and applies Schema. Remote libsql urls go
// through the libsql client, anything else is treated as a local sqlite path
// (`:memory:` included).
func Open(url string) (*sql.DB, error) {
	if url == "" {
		return nil, wrapOpenDB(fmt.Errorf("a database url was not specified"))
	}

	var db *sql.DB
	var err error
	if isRemote(url) {
		db, err = sql.Open("libsql", url)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	} else {
		db, err = openSqlite(url)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(fmt.Errorf("apply schema: %w", err))
	}
	return db, nil
}

func openSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// a single connection serializes writers, it also keeps `:memory:`
	// databases from being split across connections
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
