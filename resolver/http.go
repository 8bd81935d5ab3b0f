package resolver

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/hazyhaar/reelkeeper/horosafe"
)

// setHeaders applies the header set both lookups share.
func (r *Resolver) setHeaders(req *http.Request) {
	req.Header.Set("X-IG-App-ID", r.cfg.AppID)
	req.Header.Set("X-ASBD-ID", r.cfg.ASBDID)
	req.Header.Set("X-IG-WWW-Claim", "0")
	req.Header.Set("Origin", r.cfg.WebOrigin)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("User-Agent", r.cfg.UserAgent)
}

// get performs one GET and returns the status and decoded body. A non-2xx
// status is not an error here.
func (r *Resolver) get(ctx context.Context, rawURL string, extra map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	r.setHeaders(req)
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if !is2xx(resp.StatusCode) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return resp.StatusCode, nil, nil
	}

	body, err := decodeBody(resp)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// decodeBody reads resp.Body according to its Content-Encoding. The
// transport only decompresses gzip transparently when it set
// Accept-Encoding itself, which it does not here.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
	body, err := horosafe.LimitedReadAll(reader, horosafe.MaxAPIBody)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func is2xx(status int) bool { return status >= 200 && status < 300 }
