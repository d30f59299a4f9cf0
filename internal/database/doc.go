// Package database provides connection pool management for PostgreSQL.
//
// The pool backs the buy archive. It is only opened when
// database.enabled is set; the watcher runs without it otherwise.
package database
