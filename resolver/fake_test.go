package resolver

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hazyhaar/reelkeeper/download"
)

// fakeInstagram serves both Instagram hosts from one TLS test server. The
// returned client dials it for any hostname, so the resolver runs with its
// default endpoint URLs.
type fakeInstagram struct {
	mu       sync.Mutex
	info     http.HandlerFunc
	graphql  http.HandlerFunc
	requests []*http.Request
}

func (f *fakeInstagram) count(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Host == host {
			n++
		}
	}
	return n
}

func (f *fakeInstagram) last(host string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Host == host {
			return f.requests[i]
		}
	}
	return nil
}

func newFakeInstagram(t *testing.T) (*fakeInstagram, *http.Client) {
	t.Helper()
	f := &fakeInstagram{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(context.Background()))
		info, graphql := f.info, f.graphql
		f.mu.Unlock()

		switch r.Host {
		case "i.instagram.com":
			if info == nil {
				http.NotFound(w, r)
				return
			}
			info(w, r)
		case "www.instagram.com":
			if graphql == nil {
				http.NotFound(w, r)
				return
			}
			graphql(w, r)
		default:
			http.Error(w, "unexpected host "+r.Host, http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)

	tr := srv.Client().Transport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	addr := srv.Listener.Addr().String()
	tr.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
	return f, &http.Client{Transport: tr}
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

type fakeDispatcher struct {
	mu    sync.Mutex
	jobs  []download.Job
	err   error
	panic bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, job download.Job) (string, error) {
	if d.panic {
		panic("disk on fire")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	if d.err != nil {
		return "", d.err
	}
	return "/tmp/" + job.Shortcode + ".mp4", nil
}
