// Package database caches probed video dimensions in SQLite so ffprobe only
// runs again when a file's modification time changes.
//
// The schema lives in embedded SQL files under migrations/ and is applied
// with golang-migrate when the database is opened. Every query is bounded
// by a timeout and recorded in the db_query metrics.
package database
