package driver

import "fmt"

// Name identifies one of the engine's supported backends.
type Name string

const (
	SQLite    Name = "sqlite"
	Postgres  Name = "postgres"
	MySQL     Name = "mysql"
	SQLServer Name = "sqlserver"
)

var openers = map[Name]Opener{
	SQLite:    OpenSQLite,
	Postgres:  OpenPostgres,
	MySQL:     OpenMySQL,
	SQLServer: OpenSQLServer,
}

// Lookup resolves an Opener by backend name. Driver selection is a config
// concern external to the pool; the pool only ever sees the Opener it was
// constructed with.
func Lookup(name Name) (Opener, error) {
	opener, ok := openers[name]
	if !ok {
		return nil, fmt.Errorf("driver: unknown backend %q", name)
	}
	return opener, nil
}
