package persistence

import "fmt"

// Open returns the backend named by dbType. dbFile is used by the json and
// sqlite backends, databaseURL by postgres.
func Open(dbType, databaseURL, dbFile string) (Storage, error) {
	switch dbType {
	case "postgres":
		return NewPostgresStore(databaseURL)
	case "sqlite":
		return NewSQLiteStore(dbFile)
	case "json", "":
		return NewJSONStore(dbFile)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", dbType)
	}
}
