package prefstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/hazyhaar/reelkeeper/dbopen"
	"github.com/hazyhaar/reelkeeper/reel"
	"github.com/hazyhaar/reelkeeper/watch"
)

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const (
	keyVolume = "volume"
	keyMuted  = "muted"
)

// SQLite stores preferences in a key/value table.
//
// Every read and write goes through one pinned connection. PRAGMA
// data_version does not move for a connection's own commits, so Watch
// only reports writes made by other connections.
type SQLite struct {
	db     *sql.DB
	owned  bool
	logger *slog.Logger

	mu   sync.Mutex
	conn *sql.Conn
}

// Open opens (creating if needed) the preference database at path. Extra
// options are passed to dbopen after the defaults.
func Open(path string, logger *slog.Logger, opts ...dbopen.Option) (*SQLite, error) {
	opts = append([]dbopen.Option{dbopen.WithMkdirAll(), dbopen.WithSchema(schema)}, opts...)
	db, err := dbopen.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("prefstore: %w", err)
	}
	s := New(db, logger)
	s.owned = true
	return s, nil
}

// New wraps an already opened database. The schema must exist; use
// dbopen.WithSchema(Schema()) when opening it.
func New(db *sql.DB, logger *slog.Logger) *SQLite {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{db: db, logger: logger}
}

// Schema returns the table definition.
func Schema() string { return schema }

// Close releases the pinned connection and closes the database if Open
// created it.
func (s *SQLite) Close() error {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		c, err := s.db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("prefstore: conn: %w", err)
		}
		s.conn = c
	}
	return fn(s.conn)
}

// Load reads the preferences. Missing or unreadable values fall back to
// their defaults one by one.
func (s *SQLite) Load(ctx context.Context) (reel.Preferences, error) {
	var p reel.Preferences
	err := s.withConn(ctx, func(c *sql.Conn) error {
		var err error
		p, err = s.load(ctx, c)
		return err
	})
	if err != nil {
		return reel.DefaultPreferences(), err
	}
	return p, nil
}

func (s *SQLite) load(ctx context.Context, c *sql.Conn) (reel.Preferences, error) {
	p := reel.DefaultPreferences()

	rows, err := c.QueryContext(ctx, `SELECT key, value FROM preferences WHERE key IN (?, ?)`, keyVolume, keyMuted)
	if err != nil {
		return p, fmt.Errorf("prefstore: load: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return reel.DefaultPreferences(), fmt.Errorf("prefstore: scan: %w", err)
		}
		switch k {
		case keyVolume:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				s.logger.Warn("prefstore: bad volume, using default", "value", v)
				continue
			}
			p.Volume = f
		case keyMuted:
			b, err := strconv.ParseBool(v)
			if err != nil {
				s.logger.Warn("prefstore: bad muted flag, using default", "value", v)
				continue
			}
			p.Muted = b
		}
	}
	if err := rows.Err(); err != nil {
		return reel.DefaultPreferences(), fmt.Errorf("prefstore: rows: %w", err)
	}
	return p.Clamp(), nil
}

// Save writes both values in one transaction.
func (s *SQLite) Save(ctx context.Context, p reel.Preferences) error {
	p = p.Clamp()
	err := s.withConn(ctx, func(c *sql.Conn) error {
		return dbopen.RunTx(ctx, c, func(tx *sql.Tx) error {
			const upsert = `INSERT INTO preferences (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value`
			if _, err := tx.ExecContext(ctx, upsert, keyVolume, strconv.FormatFloat(p.Volume, 'f', -1, 64)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, upsert, keyMuted, strconv.FormatBool(p.Muted))
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("prefstore: save: %w", err)
	}
	return nil
}

// Watch calls fn with the preferences whenever another connection commits
// a change. Saves made through s are not reported. It blocks until ctx is
// done.
func (s *SQLite) Watch(ctx context.Context, interval time.Duration, fn func(reel.Preferences)) error {
	w := watch.New(s.db, watch.Options{
		Interval: interval,
		Logger:   s.logger,
		Detector: s.dataVersion,
	})
	w.OnChange(ctx, func() error {
		p, err := s.Load(ctx)
		if err != nil {
			return err
		}
		fn(p)
		return nil
	})
	return nil
}

func (s *SQLite) dataVersion(ctx context.Context, _ watch.Querier) (int64, error) {
	var v int64
	err := s.withConn(ctx, func(c *sql.Conn) error {
		var err error
		v, err = watch.PragmaDataVersion(ctx, c)
		return err
	})
	return v, err
}
