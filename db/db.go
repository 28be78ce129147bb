// Package db opens the content database and keeps its schema current.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const DefaultDriver = "sqlite"

// sqlite needs these per connection, so they travel in the DSN.
var pragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
}

// Open connects to the database. Only sqlite is supported for now.
func Open(driver, dataSourceName string) (*sql.DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	if driver != DefaultDriver {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if dataSourceName == "" {
		dataSourceName = "./yatube.db"
	}

	conn, err := sql.Open(driver, withPragmas(dataSourceName))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return conn, nil
}

func withPragmas(dsn string) string {
	var missing []string
	for _, p := range pragmas {
		name := p[:strings.Index(p, "(")]
		if !strings.Contains(dsn, name) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}

// Migrate applies every pending migration. An already current schema is
// not an error.
func Migrate(conn *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, DefaultDriver, driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
