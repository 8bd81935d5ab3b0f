package trace

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/hazyhaar/reelkeeper/kit"
)

type logLine struct {
	Level     string `json:"level"`
	Msg       string `json:"msg"`
	Op        string `json:"op"`
	Query     string `json:"query"`
	Key       string `json:"key"`
	Rows      *int64 `json:"rows"`
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []logLine {
	t.Helper()
	var out []logLine
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var l logLine
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			t.Fatalf("bad log line %q: %v", raw, err)
		}
		out = append(out, l)
	}
	return out
}

func openTraced(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDriver_LogsQueries(t *testing.T) {
	buf := capture(t)
	db := openTraced(t)
	ctx := kit.WithRequestID(context.Background(), "req_1")

	if _, err := db.ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO kv VALUES (?, ?)`, "volume", "0.5"); err != nil {
		t.Fatal(err)
	}
	var v string
	if err := db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, "volume").Scan(&v); err != nil {
		t.Fatal(err)
	}

	got := lines(t, buf)
	if len(got) != 3 {
		t.Fatalf("got %d log lines, want 3: %s", len(got), buf)
	}
	if got[1].Op != "exec" || !strings.HasPrefix(got[1].Query, "INSERT") || got[1].Level != "DEBUG" {
		t.Errorf("insert line: %+v", got[1])
	}
	if got[1].Key != "volume" || got[1].Rows == nil || *got[1].Rows != 1 {
		t.Errorf("insert line should name the key and one row: %+v", got[1])
	}
	if got[2].Op != "query" || got[2].RequestID != "req_1" || got[2].Key != "volume" {
		t.Errorf("select line: %+v", got[2])
	}
	if got[2].Rows != nil {
		t.Errorf("query line carries a row count: %d", *got[2].Rows)
	}
}

func TestDriver_SkipsFastPragmas(t *testing.T) {
	buf := capture(t)
	db := openTraced(t)

	var version int
	if err := db.QueryRow(`PRAGMA data_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("pragma logged: %s", buf)
	}
}

func TestDriver_LogsErrors(t *testing.T) {
	buf := capture(t)
	db := openTraced(t)

	if _, err := db.Exec(`CREATE TABLE t (x INTEGER NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO t VALUES (NULL)`); err == nil {
		t.Fatal("constraint violation accepted")
	}

	got := lines(t, buf)
	last := got[len(got)-1]
	if last.Level != "ERROR" || last.Error == "" {
		t.Errorf("error line: %+v", last)
	}
}

func TestDriver_Transactions(t *testing.T) {
	capture(t)
	db := openTraced(t)
	if _, err := db.Exec(`CREATE TABLE t (x INTEGER)`); err != nil {
		t.Fatal(err)
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.Exec(`INSERT INTO t VALUES (1)`); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rolled back row visible: %d", n)
	}
}
