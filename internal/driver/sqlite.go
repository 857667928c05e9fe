package driver

import (
	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite builds an Opener for SQLite DSNs (file paths or
// "file::memory:?cache=shared").
func OpenSQLite(dsn string) (Conn, error) {
	return newSQLConn("sqlite3", dsn)
}
