package prefstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/reelkeeper/dbopen"
	"github.com/hazyhaar/reelkeeper/reel"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p, _ := m.Load(ctx)
	if p != reel.DefaultPreferences() {
		t.Fatalf("empty store: got %+v", p)
	}
	m.Save(ctx, reel.Preferences{Volume: 1.7, Muted: true})
	p, _ = m.Load(ctx)
	if p.Volume != 1 || !p.Muted {
		t.Fatalf("got %+v", p)
	}
	if m.Saves() != 1 {
		t.Errorf("saves: %d", m.Saves())
	}
}

func TestSQLite_LoadDefaults(t *testing.T) {
	s := New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema())), nil)
	p, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p != reel.DefaultPreferences() {
		t.Fatalf("got %+v", p)
	}
}

func TestSQLite_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := New(dbopen.OpenMemory(t, dbopen.WithSchema(Schema())), nil)

	want := reel.Preferences{Volume: 0.25, Muted: true}
	if err := s.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	// Overwrite keeps exactly two rows.
	if err := s.Save(ctx, reel.Preferences{Volume: 0.75}); err != nil {
		t.Fatal(err)
	}
	var n int
	s.withConn(ctx, func(c *sql.Conn) error {
		return c.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&n)
	})
	if n != 2 {
		t.Fatalf("rows: got %d, want 2", n)
	}
}

func TestSQLite_BadValuesFallBack(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema()))
	db.Exec(`INSERT INTO preferences VALUES ('volume', 'loud'), ('muted', 'true')`)

	p, err := New(db, nil).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.Volume != reel.DefaultVolume || !p.Muted {
		t.Fatalf("got %+v", p)
	}
}

func TestSQLite_WatchSeesOtherProcess(t *testing.T) {
	// WHAT: A save through a second handle reaches the watcher.
	// WHY: `reelkeeper volume` runs as its own process next to `watch`.
	path := filepath.Join(t.TempDir(), "prefs.db")
	a, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got := make(chan reel.Preferences, 4)
	go a.Watch(ctx, 20*time.Millisecond, func(p reel.Preferences) { got <- p })
	time.Sleep(60 * time.Millisecond)

	want := reel.Preferences{Volume: 0.1, Muted: true}
	if err := b.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-got:
		if p != want {
			t.Fatalf("got %+v, want %+v", p, want)
		}
	case <-ctx.Done():
		t.Fatal("watcher never reported the change")
	}
}

func TestSQLite_WatchIgnoresOwnSaves(t *testing.T) {
	// WHAT: Saves made through the watching store never come back to it.
	// WHY: A late echo of an older slider value would snap the widgets back.
	path := filepath.Join(t.TempDir(), "prefs.db")
	a, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got := make(chan reel.Preferences, 8)
	go a.Watch(ctx, 10*time.Millisecond, func(p reel.Preferences) { got <- p })
	time.Sleep(40 * time.Millisecond)

	for _, v := range []float64{0.4, 0.6} {
		if err := a.Save(ctx, reel.Preferences{Volume: v}); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case p := <-got:
		t.Fatalf("own save reported: %+v", p)
	case <-time.After(150 * time.Millisecond):
	}

	want := reel.Preferences{Volume: 0.2}
	if err := b.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-got:
		if p != want {
			t.Fatalf("got %+v, want %+v", p, want)
		}
	case <-ctx.Done():
		t.Fatal("watcher never reported the other handle's save")
	}
}
