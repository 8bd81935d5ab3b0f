// Package trace logs SQL for modernc.org/sqlite.
//
// It registers a "sqlite-trace" driver that wraps the standard "sqlite" driver,
// intercepting every Exec and Query at the database/sql/driver level. Only
// the driver name changes:
//
//	db, _ := dbopen.Open(path, dbopen.WithDriver(trace.DriverName))
//
// Queries are logged through slog with adaptive levels (Debug, Warn >100ms,
// Error on failure). Request ids are read from context via kit.GetRequestID.
package trace

import (
	"database/sql"
	"log/slog"
	"sync/atomic"

	sqlite "modernc.org/sqlite"
)

// DriverName is the database/sql name of the tracing driver.
const DriverName = "sqlite-trace"

var logger atomic.Pointer[slog.Logger]

// SetLogger routes SQL logs to l. Nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func getLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func init() {
	sql.Register(DriverName, &TracingDriver{
		Driver: &sqlite.Driver{},
	})
}
