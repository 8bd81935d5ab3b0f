// Package domwatch runs the browser side of a watch session. It owns the
// Chrome process, opens the tab, installs the page script and exposes the
// tab as an overlay.Driver with a stream of page events.
//
// domwatch reports and executes, it does not decide. What to inject and
// when lives in the overlay package.
package domwatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/reelkeeper/domwatch/internal/browser"
)

// Watcher is the top-level orchestrator for one browser.
type Watcher struct {
	cfg    Config
	mgr    *browser.Manager
	logger *slog.Logger

	mu   sync.Mutex
	tabs []*browser.Tab
}

// New creates a Watcher from configuration.
func New(cfg Config, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()

	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Remote,
		UserDataDir:      cfg.Profile,
		Bin:              cfg.Bin,
		Headless:         cfg.Headless,
		ResourceBlocking: cfg.ResourceBlocking,
		XvfbDisplay:      cfg.XvfbDisplay,
		Logger:           logger,
	})

	return &Watcher{cfg: cfg, mgr: mgr, logger: logger}
}

// Start launches or connects to the browser.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := w.mgr.Start(ctx); err != nil {
		return fmt.Errorf("domwatch: start browser: %w", err)
	}
	return nil
}

// Open creates a tab, installs the page script and navigates to pageURL
// (the configured start URL when empty). Events stop when ctx is done.
func (w *Watcher) Open(ctx context.Context, pageURL string) (*Page, error) {
	if pageURL == "" {
		pageURL = w.cfg.StartURL
	}

	tab, err := browser.OpenTab(w.mgr)
	if err != nil {
		return nil, fmt.Errorf("domwatch: open tab: %w", err)
	}

	p := newPage(tab.Page, w.cfg.EventBuffer, w.logger)
	if err := p.install(ctx); err != nil {
		tab.Close()
		return nil, err
	}
	if err := tab.Navigate(ctx, pageURL); err != nil {
		tab.Close()
		return nil, fmt.Errorf("domwatch: %w", err)
	}

	w.mu.Lock()
	w.tabs = append(w.tabs, tab)
	w.mu.Unlock()

	w.logger.Info("domwatch: page open", "url", pageURL)
	return p, nil
}

// Close closes every tab and shuts the browser down.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, t := range w.tabs {
		if err := t.Close(); err != nil {
			w.logger.Debug("domwatch: close tab", "error", err)
		}
	}
	w.tabs = nil
	return w.mgr.Close()
}
