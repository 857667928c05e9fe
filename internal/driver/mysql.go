package driver

import (
	_ "github.com/go-sql-driver/mysql"
)

// OpenMySQL builds an Opener for MySQL DSNs ("user:pass@tcp(host:port)/db").
func OpenMySQL(dsn string) (Conn, error) {
	return newSQLConn("mysql", dsn)
}
