// Package database provides the GORM connection to the system of record.
//
// MySQL is the production driver; SQLite is supported for tests and local
// development. The package also owns the embedded schema migrations (run via
// golang-migrate) and a schema verifier the sync engine uses to fail fast when
// required tables are missing.
package database
