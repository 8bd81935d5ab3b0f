package domwatch

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/reelkeeper/auth"
	"github.com/hazyhaar/reelkeeper/domwatch/mutation"
	"github.com/hazyhaar/reelkeeper/overlay"
	"github.com/hazyhaar/reelkeeper/reel"
)

//go:embed page.js
var pageJS string

// BindingName is the CDP binding the page script reports through.
const BindingName = "__reelkeeper_binding"

// cookieURLs scopes the cookies handed to the resolver.
var cookieURLs = []string{"https://www.instagram.com/", "https://i.instagram.com/"}

// Page drives one browser tab: it implements overlay.Driver and turns the
// page script's binding calls into mutation events.
type Page struct {
	page    *rod.Page
	logger  *slog.Logger
	events  chan mutation.Event
	dropped atomic.Uint64
}

var _ overlay.Driver = (*Page)(nil)

func newPage(p *rod.Page, buffer int, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Page{page: p, logger: logger, events: make(chan mutation.Event, buffer)}
}

// install adds the binding and the page script to the current document and
// every document loaded after it, then starts forwarding binding calls.
func (p *Page) install(ctx context.Context) error {
	if err := (proto.RuntimeAddBinding{Name: BindingName}).Call(p.page); err != nil {
		return fmt.Errorf("domwatch: add binding: %w", err)
	}
	if _, err := p.page.EvalOnNewDocument("(" + pageJS + ")()"); err != nil {
		return fmt.Errorf("domwatch: install page script: %w", err)
	}
	if _, err := p.page.Context(ctx).Eval(pageJS); err != nil {
		return fmt.Errorf("domwatch: run page script: %w", err)
	}

	wait := p.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		p.handleBinding(ctx, e)
	})
	go func() {
		wait()
		close(p.events)
	}()
	return nil
}

// Events delivers page events until the tab or its context goes away.
func (p *Page) Events() <-chan mutation.Event { return p.events }

// Dropped counts payloads that failed to decode.
func (p *Page) Dropped() uint64 { return p.dropped.Load() }

func (p *Page) handleBinding(ctx context.Context, e *proto.RuntimeBindingCalled) {
	if e.Name != BindingName {
		return
	}
	ev, err := mutation.Decode([]byte(e.Payload))
	if err != nil {
		p.dropped.Add(1)
		p.logger.Warn("domwatch: bad binding payload", "error", err)
		return
	}
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}

func (p *Page) eval(ctx context.Context, op, js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("domwatch: %s: %w", op, err)
	}
	return res, nil
}

func (p *Page) Location(ctx context.Context) (string, error) {
	res, err := p.eval(ctx, "location", `() => location.href`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (p *Page) Snapshot(ctx context.Context) (*overlay.Snapshot, error) {
	res, err := p.eval(ctx, "snapshot", `() => window.__reelkeeper.skeleton()`)
	if err != nil {
		return nil, err
	}
	return overlay.ParseSnapshot(res.Value.Str())
}

func (p *Page) InjectControls(ctx context.Context, containerID string, st overlay.ControlsState) error {
	_, err := p.eval(ctx, "inject controls", `(id, st) => window.__reelkeeper.inject(id, st)`, containerID, st)
	return err
}

func (p *Page) RemoveControls(ctx context.Context) error {
	_, err := p.eval(ctx, "remove controls", `() => window.__reelkeeper.removeAll()`)
	return err
}

func (p *Page) SyncControls(ctx context.Context, st overlay.ControlsState) error {
	_, err := p.eval(ctx, "sync controls", `(st) => window.__reelkeeper.sync(st)`, st)
	return err
}

func (p *Page) WatchVideo(ctx context.Context, videoID string) error {
	_, err := p.eval(ctx, "watch video", `(id) => window.__reelkeeper.watchVideo(id)`, videoID)
	return err
}

func (p *Page) ApplyVolume(ctx context.Context, videoID string, prefs reel.Preferences) error {
	_, err := p.eval(ctx, "apply volume", `(id, v, m) => window.__reelkeeper.apply(id, v, m)`,
		videoID, prefs.Volume, prefs.Muted)
	return err
}

func (p *Page) SetDownloadState(ctx context.Context, containerID string, st overlay.DownloadState, message string) error {
	_, err := p.eval(ctx, "download state", `(id, s, msg) => window.__reelkeeper.setState(id, s, msg)`,
		containerID, string(st), message)
	return err
}

// Cookies returns the tab's Instagram cookies, including the logged-in
// session, for the resolver's jar.
func (p *Page) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	cookies, err := p.page.Context(ctx).Cookies(cookieURLs)
	if err != nil {
		return nil, fmt.Errorf("domwatch: cookies: %w", err)
	}
	return auth.FromBrowser(cookies), nil
}
