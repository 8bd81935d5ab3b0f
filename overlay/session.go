package overlay

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/hazyhaar/reelkeeper/domwatch/mutation"
	"github.com/hazyhaar/reelkeeper/prefstore"
	"github.com/hazyhaar/reelkeeper/reel"
)

// MsgNoReelURL is shown when download is clicked off the reels route.
const MsgNoReelURL = "Unable to detect reel URL"

// Config tunes a Session. Zero values take defaults.
type Config struct {
	RouteMarker  string        // path substring of the reels route
	EnforceLimit int           // lifecycle events re-applied per video
	Frame        time.Duration // rescan coalescing window
	RevertAfter  time.Duration // done/failed back to idle
	Labels       Labels        // extra action-icon labels
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.RouteMarker == "" {
		c.RouteMarker = reel.DefaultRouteMarker
	}
	if c.EnforceLimit <= 0 {
		c.EnforceLimit = DefaultEnforceLimit
	}
	if c.Frame <= 0 {
		c.Frame = DefaultFrame
	}
	if c.RevertAfter <= 0 {
		c.RevertAfter = 2 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type downloadResult struct {
	containerID string
	resp        reel.Response
}

// Session owns all overlay state for one page and runs its event loop.
// Only the Run goroutine touches the fields.
type Session struct {
	cfg     Config
	drv     Driver
	store   prefstore.Store
	msgr    Messenger
	logger  *slog.Logger
	locator *Locator

	prefs    reel.Preferences
	injector *Injector
	enforcer *Enforcer
	sched    *Scheduler
	onRoute  bool
	active   string            // data-rk-id of the active video
	paired   map[string]string // container id -> video id, from the last scan

	results chan downloadResult
	reverts chan string
}

// NewSession wires a session. Call Run to start it.
func NewSession(drv Driver, store prefstore.Store, msgr Messenger, cfg Config) *Session {
	cfg.defaults()
	return &Session{
		cfg:      cfg,
		drv:      drv,
		store:    store,
		msgr:     msgr,
		logger:   cfg.Logger,
		locator:  NewLocator(cfg.Labels),
		prefs:    reel.DefaultPreferences(),
		injector: NewInjector(),
		enforcer: NewEnforcer(cfg.EnforceLimit),
		sched:    NewScheduler(cfg.Frame),
		paired:   map[string]string{},
		results:  make(chan downloadResult, 8),
		reverts:  make(chan string, 8),
	}
}

// Run processes page events until ctx is done or events is closed.
// Preferences arriving on reloads (written by another process) replace the
// current ones without being saved again.
func (s *Session) Run(ctx context.Context, events <-chan mutation.Event, reloads <-chan reel.Preferences) error {
	p, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("overlay: load preferences, using defaults", "error", err)
		p = reel.DefaultPreferences()
	}
	s.prefs = p

	if loc, err := s.drv.Location(ctx); err == nil {
		s.onRoute = s.isReelURL(loc)
	}
	if s.onRoute {
		s.rescan(ctx)
	}
	s.logger.Info("overlay: session started", "on_route", s.onRoute, "volume", s.prefs.Volume, "muted", s.prefs.Muted)

	defer s.sched.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.handle(ctx, ev)

		case <-s.sched.C():
			s.sched.Fired()
			s.rescan(ctx)

		case r := <-s.results:
			s.finishDownload(ctx, r)

		case id := <-s.reverts:
			if s.onRoute {
				s.setDownloadState(ctx, id, DownloadIdle, "")
			}

		case p := <-reloads:
			// Another writer stored what we already have.
			if p.Clamp() == s.prefs {
				continue
			}
			s.prefs = p.Clamp()
			s.logger.Info("overlay: preferences reloaded", "volume", s.prefs.Volume, "muted", s.prefs.Muted)
			if s.routeOK(ctx) {
				s.applyAll(ctx)
				s.syncControls(ctx)
			}
		}
	}
}

// Preferences returns the current preferences. Only safe from the Run
// goroutine or after Run returns.
func (s *Session) Preferences() reel.Preferences { return s.prefs }

// PairedVideo returns the video the last scan paired with a container.
// Same goroutine rules as Preferences.
func (s *Session) PairedVideo(containerID string) string { return s.paired[containerID] }

// ActiveVideo returns the id of the video nearest the viewport center at
// the last rescan.
func (s *Session) ActiveVideo() string { return s.active }

func (s *Session) handle(ctx context.Context, ev mutation.Event) {
	switch ev.Kind {
	case mutation.KindMutation:
		if s.onRoute {
			s.sched.Observe(ev.Batch)
		}

	case mutation.KindVideo:
		if !s.onRoute || !s.enforcer.OnEvent(ev.VideoID, ev.Name) {
			return
		}
		if s.routeOK(ctx) {
			s.applyVolume(ctx, ev.VideoID)
		}

	case mutation.KindVolumeInput:
		s.changePrefs(ctx, reel.FromSlider(ev.Value))

	case mutation.KindMuteToggle:
		p := s.prefs
		p.Muted = !p.Muted
		s.changePrefs(ctx, p)

	case mutation.KindDownloadClick:
		s.startDownload(ctx, ev.ContainerID)

	case mutation.KindNavigate:
		s.navigate(ctx, ev.URL)
	}
}

func (s *Session) navigate(ctx context.Context, rawURL string) {
	was := s.onRoute
	s.onRoute = s.isReelURL(rawURL)
	switch {
	case was && !s.onRoute:
		s.logger.Info("overlay: left reels route", "url", rawURL)
		s.cleanup(ctx)
	case !was && s.onRoute:
		s.logger.Info("overlay: entered reels route", "url", rawURL)
		s.sched.Arm()
	}
}

// cleanup removes the injected controls and forgets every element.
func (s *Session) cleanup(ctx context.Context) {
	s.sched.Stop()
	if err := s.drv.RemoveControls(ctx); err != nil {
		s.logger.Warn("overlay: remove controls", "error", err)
	}
	s.injector.Reset()
	s.enforcer.Reset()
	clear(s.paired)
	s.active = ""
}

func (s *Session) rescan(ctx context.Context) {
	if !s.routeOK(ctx) {
		return
	}
	snap, err := s.drv.Snapshot(ctx)
	if err != nil {
		s.logger.Warn("overlay: snapshot", "error", err)
		return
	}

	present := snap.IDs()
	s.injector.Prune(present)
	s.enforcer.Prune(present)

	for _, v := range snap.Videos() {
		if !s.enforcer.Track(v.ID) {
			continue
		}
		if err := s.drv.WatchVideo(ctx, v.ID); err != nil {
			s.logger.Warn("overlay: watch video", "video", v.ID, "error", err)
		}
		s.applyVolume(ctx, v.ID)
	}

	st := ControlsFor(s.prefs)
	injected := 0
	clear(s.paired)
	for _, c := range s.locator.LocateActionContainers(snap) {
		if v, ok := s.locator.VideoForContainer(snap, c); ok {
			s.paired[c.ID] = v.ID
		}
		ok, err := s.injector.Bind(ctx, s.drv, c, st)
		if err != nil {
			s.logger.Warn("overlay: inject controls", "container", c.ID, "error", err)
			continue
		}
		if ok {
			injected++
		}
	}

	if v, ok := s.locator.LocateActiveVideo(snap); ok {
		s.active = v.ID
	} else {
		s.active = ""
	}
	if injected > 0 {
		s.logger.Debug("overlay: controls injected", "count", injected, "active_video", s.active)
	}
}

func (s *Session) changePrefs(ctx context.Context, p reel.Preferences) {
	s.prefs = p.Clamp()
	if err := s.store.Save(ctx, s.prefs); err != nil {
		s.logger.Warn("overlay: save preferences", "error", err)
	}
	if !s.routeOK(ctx) {
		return
	}
	s.applyAll(ctx)
	s.syncControls(ctx)
}

func (s *Session) applyAll(ctx context.Context) {
	for _, id := range s.enforcer.IDs() {
		s.applyVolume(ctx, id)
	}
}

func (s *Session) applyVolume(ctx context.Context, id string) {
	if err := s.drv.ApplyVolume(ctx, id, s.prefs); err != nil {
		s.logger.Debug("overlay: apply volume", "video", id, "error", err)
	}
}

func (s *Session) syncControls(ctx context.Context) {
	if err := s.drv.SyncControls(ctx, ControlsFor(s.prefs)); err != nil {
		s.logger.Warn("overlay: sync controls", "error", err)
	}
}

func (s *Session) startDownload(ctx context.Context, containerID string) {
	loc, err := s.drv.Location(ctx)
	if err != nil || !s.isReelURL(loc) {
		s.setDownloadState(ctx, containerID, DownloadFailed, MsgNoReelURL)
		s.revertLater(ctx, containerID)
		return
	}
	s.setDownloadState(ctx, containerID, DownloadBusy, "")
	s.logger.Info("overlay: download requested", "url", loc, "video", s.paired[containerID], "active_video", s.active)

	msg := reel.Message{Type: reel.TypeDownloadReel, URL: loc}
	go func() {
		resp := s.msgr.Send(ctx, msg)
		select {
		case s.results <- downloadResult{containerID: containerID, resp: resp}:
		case <-ctx.Done():
		}
	}()
}

func (s *Session) finishDownload(ctx context.Context, r downloadResult) {
	if !s.onRoute {
		return
	}
	if r.resp.Success {
		s.setDownloadState(ctx, r.containerID, DownloadDone, "")
	} else {
		msg := r.resp.Err().Error()
		s.logger.Warn("overlay: download failed", "error", msg)
		s.setDownloadState(ctx, r.containerID, DownloadFailed, "Failed to download video: "+msg)
	}
	s.revertLater(ctx, r.containerID)
}

func (s *Session) revertLater(ctx context.Context, containerID string) {
	time.AfterFunc(s.cfg.RevertAfter, func() {
		select {
		case s.reverts <- containerID:
		case <-ctx.Done():
		}
	})
}

func (s *Session) setDownloadState(ctx context.Context, containerID string, st DownloadState, msg string) {
	if err := s.drv.SetDownloadState(ctx, containerID, st, msg); err != nil {
		s.logger.Debug("overlay: set download state", "container", containerID, "state", st, "error", err)
	}
}

// routeOK re-reads the location before a DOM side effect. Leaving the
// route through a path the page did not announce triggers cleanup here.
func (s *Session) routeOK(ctx context.Context) bool {
	if !s.onRoute {
		return false
	}
	loc, err := s.drv.Location(ctx)
	if err != nil {
		s.logger.Debug("overlay: location", "error", err)
		return false
	}
	if !s.isReelURL(loc) {
		s.onRoute = false
		s.cleanup(ctx)
		return false
	}
	return true
}

func (s *Session) isReelURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return reel.IsReelPath(u.Path, s.cfg.RouteMarker)
}
