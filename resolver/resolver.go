// Package resolver turns a reel page URL into a saved video file.
//
// The pipeline runs in fixed order: extract the shortcode, decode it to the
// numeric media id, ask the media-info endpoint, fall back once to the
// GraphQL endpoint when that yields nothing, then hand the URL to a
// Dispatcher. Each call makes at most one request per endpoint, in
// sequence. There is no retry.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/hazyhaar/reelkeeper/auth"
	"github.com/hazyhaar/reelkeeper/download"
	"github.com/hazyhaar/reelkeeper/kit"
	"github.com/hazyhaar/reelkeeper/reel"
)

// Source names the lookup that produced a media URL.
type Source string

const (
	SourceInfo    Source = "info"
	SourceGraphQL Source = "graphql"
)

// Media is a resolved reel.
type Media struct {
	URL       string
	Shortcode string
	PK        *big.Int
	Source    Source
}

// Dispatcher saves a resolved media URL. *download.Saver implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, job download.Job) (string, error)
}

// CookieSource returns the current session cookies. It is called before
// every resolution so a logged-in browser session is picked up live.
type CookieSource func(ctx context.Context) ([]*http.Cookie, error)

// Resolver runs the resolution pipeline.
type Resolver struct {
	cfg        Config
	client     *http.Client
	dispatcher Dispatcher
	cookies    CookieSource
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client for both lookups. A client without a jar
// is copied and given one.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithDispatcher sets where resolved media goes. Without one, Download
// only resolves.
func WithDispatcher(d Dispatcher) Option {
	return func(r *Resolver) { r.dispatcher = d }
}

// WithCookieSource installs a live cookie source.
func WithCookieSource(src CookieSource) Option {
	return func(r *Resolver) { r.cookies = src }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver. Zero Config fields take their defaults.
func New(cfg Config, opts ...Option) *Resolver {
	cfg.applyDefaults()
	r := &Resolver{cfg: cfg, logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.client.Jar == nil {
		c := *r.client
		c.Jar = auth.NewJar()
		r.client = &c
	}
	return r
}

// Resolve runs the lookup steps and returns the media URL.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*Media, error) {
	code, err := reel.ExtractShortcode(pageURL)
	if err != nil {
		return nil, err
	}
	pk, err := reel.ShortcodeToPK(code)
	if err != nil {
		return nil, err
	}
	log := r.logger.With("shortcode", code, "request_id", kit.GetRequestID(ctx))

	r.refreshCookies(ctx, log)

	u, err := r.lookupInfo(ctx, pk)
	if err == nil {
		log.Debug("resolver: media info hit", "pk", pk.String())
		return &Media{URL: u, Shortcode: code, PK: pk, Source: SourceInfo}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Info("resolver: media info miss, trying graphql", "error", err)

	u, err = r.lookupGraphQL(ctx, code)
	if err != nil {
		log.Warn("resolver: graphql failed", "error", err)
		return nil, err
	}
	return &Media{URL: u, Shortcode: code, PK: pk, Source: SourceGraphQL}, nil
}

// Download resolves pageURL and dispatches the result. It always returns a
// definitive response.
func (r *Resolver) Download(ctx context.Context, pageURL string) reel.Response {
	m, err := r.Resolve(ctx, pageURL)
	if err != nil {
		return reel.Failed(err)
	}
	if r.dispatcher != nil {
		path, err := r.dispatcher.Dispatch(ctx, download.Job{URL: m.URL, Shortcode: m.Shortcode})
		if err != nil {
			r.logger.Warn("resolver: dispatch failed", "shortcode", m.Shortcode, "error", err)
			return reel.Failed(&reel.DispatchError{Cause: err})
		}
		r.logger.Info("resolver: downloaded", "shortcode", m.Shortcode, "source", m.Source, "path", path)
	}
	return reel.Succeeded(m.URL)
}

// Handle is the message boundary. It never panics and always returns
// exactly one response.
func (r *Resolver) Handle(ctx context.Context, msg reel.Message) (resp reel.Response) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("resolver: panic in handler", "panic", p)
			resp = reel.Failed(&reel.UnknownError{Msg: fmt.Sprint(p)})
		}
	}()
	if msg.Type != reel.TypeDownloadReel {
		return reel.Failed(fmt.Errorf("unsupported message type %q", msg.Type))
	}
	return r.Download(ctx, msg.URL)
}

func (r *Resolver) refreshCookies(ctx context.Context, log *slog.Logger) {
	if r.cookies == nil {
		return
	}
	cs, err := r.cookies(ctx)
	if err != nil {
		log.Warn("resolver: cookie refresh failed", "error", err)
		return
	}
	auth.Seed(r.client.Jar, cs)
}
