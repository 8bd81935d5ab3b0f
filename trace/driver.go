package trace

import (
	"context"
	"database/sql/driver"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/reelkeeper/kit"
)

// slowQuery promotes a statement to a warning.
const slowQuery = 100 * time.Millisecond

// quietPragma is how long a PRAGMA may take before it is worth a line. The
// preference watcher polls data_version on every tick.
const quietPragma = 10 * time.Millisecond

// TracingDriver wraps the modernc.org/sqlite driver. database/sql always
// prepares through PrepareContext and runs the context variants, so only
// those are intercepted; the embedded types cover the rest.
type TracingDriver struct {
	driver.Driver
}

func (d *TracingDriver) Open(name string) (driver.Conn, error) {
	conn, err := d.Driver.Open(name)
	if err != nil {
		return nil, err
	}
	return &tracingConn{Conn: conn}, nil
}

type tracingConn struct {
	driver.Conn
}

func (c *tracingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if pc, ok := c.Conn.(driver.ConnPrepareContext); ok {
		stmt, err = pc.PrepareContext(ctx, query)
	} else {
		stmt, err = c.Conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &tracingStmt{Stmt: stmt, query: query}, nil
}

func (c *tracingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if bt, ok := c.Conn.(driver.ConnBeginTx); ok {
		return bt.BeginTx(ctx, opts)
	}
	return c.Conn.Begin()
}

type tracingStmt struct {
	driver.Stmt
	query string
}

func (s *tracingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	var (
		res driver.Result
		err error
	)
	if ec, ok := s.Stmt.(driver.StmtExecContext); ok {
		res, err = ec.ExecContext(ctx, args)
	} else {
		res, err = s.Stmt.Exec(values(args))
	}
	ev := event{op: "exec", args: args, took: time.Since(start), err: err}
	if err == nil {
		if n, rerr := res.RowsAffected(); rerr == nil {
			ev.rows = n
		}
	}
	s.log(ctx, ev)
	return res, err
}

func (s *tracingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if qc, ok := s.Stmt.(driver.StmtQueryContext); ok {
		rows, err = qc.QueryContext(ctx, args)
	} else {
		rows, err = s.Stmt.Query(values(args))
	}
	s.log(ctx, event{op: "query", args: args, took: time.Since(start), rows: -1, err: err})
	return rows, err
}

type event struct {
	op   string
	args []driver.NamedValue
	took time.Duration
	rows int64 // -1 when unknown
	err  error
}

func (s *tracingStmt) log(ctx context.Context, ev event) {
	if ev.err == nil && ev.took < quietPragma && strings.HasPrefix(s.query, "PRAGMA ") {
		return
	}

	level := slog.LevelDebug
	switch {
	case ev.err != nil:
		level = slog.LevelError
	case ev.took > slowQuery:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("op", ev.op),
		slog.String("query", s.query),
		slog.Duration("duration", ev.took),
	}
	// Preference rows are bound as (key, value); naming the key is enough
	// to follow a slider drag through the log.
	if len(ev.args) > 0 {
		if k, ok := ev.args[0].Value.(string); ok {
			attrs = append(attrs, slog.String("key", k))
		}
	}
	if ev.rows >= 0 && ev.op == "exec" {
		attrs = append(attrs, slog.Int64("rows", ev.rows))
	}
	if id := kit.GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if ev.err != nil {
		attrs = append(attrs, slog.String("error", ev.err.Error()))
	}
	getLogger().LogAttrs(ctx, level, "trace: sql", attrs...)
}

func values(named []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(named))
	for i, nv := range named {
		out[i] = nv.Value
	}
	return out
}
