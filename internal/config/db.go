package config

const (
	// EngineSQLite stores everything in a single SQLite file (Name is the file path).
	EngineSQLite = "sqlite"
	// EngineMySQL connects to a MySQL or MariaDB server.
	EngineMySQL = "mysql"
	// EnginePostgres connects to a PostgreSQL server.
	EnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string // sqlite, mysql or postgres
	Debug      bool   // log every SQL statement
}
