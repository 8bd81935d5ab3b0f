// Package prefstore persists the two playback preferences: volume and
// muted. Nothing else is stored.
package prefstore

import (
	"context"
	"sync"

	"github.com/hazyhaar/reelkeeper/reel"
)

// Store loads and saves preferences.
type Store interface {
	Load(ctx context.Context) (reel.Preferences, error)
	Save(ctx context.Context, p reel.Preferences) error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	prefs *reel.Preferences
	saves int
}

// NewMemory returns a Memory store. With no argument it starts empty and
// Load returns the defaults.
func NewMemory(initial ...reel.Preferences) *Memory {
	m := &Memory{}
	if len(initial) > 0 {
		p := initial[0]
		m.prefs = &p
	}
	return m
}

func (m *Memory) Load(context.Context) (reel.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		return reel.DefaultPreferences(), nil
	}
	return *m.prefs, nil
}

func (m *Memory) Save(_ context.Context, p reel.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = p.Clamp()
	m.prefs = &p
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
