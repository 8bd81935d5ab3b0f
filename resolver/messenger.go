package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hazyhaar/reelkeeper/horosafe"
	"github.com/hazyhaar/reelkeeper/idgen"
	"github.com/hazyhaar/reelkeeper/kit"
	"github.com/hazyhaar/reelkeeper/reel"
)

// Messenger delivers a message to the resolver and waits for its single
// reply. Implementations never return without a Response.
type Messenger interface {
	Send(ctx context.Context, msg reel.Message) reel.Response
}

var newMessageID = idgen.Prefixed("dl_", idgen.Default)

// Local calls a Resolver in-process.
type Local struct {
	R *Resolver
}

func (l Local) Send(ctx context.Context, msg reel.Message) reel.Response {
	if kit.GetRequestID(ctx) == "" {
		ctx = kit.WithRequestID(ctx, newMessageID())
	}
	return l.R.Handle(ctx, msg)
}

// Remote posts messages to a `serve` instance.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

// NewRemote returns a Remote for baseURL (e.g. http://127.0.0.1:7733).
func NewRemote(baseURL string) *Remote {
	return &Remote{BaseURL: strings.TrimSuffix(baseURL, "/"), Client: &http.Client{}}
}

func (m *Remote) Send(ctx context.Context, msg reel.Message) reel.Response {
	resp, err := m.send(ctx, msg)
	if err != nil {
		return reel.Failed(err)
	}
	return resp
}

func (m *Remote) send(ctx context.Context, msg reel.Message) (reel.Response, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return reel.Response{}, fmt.Errorf("messenger: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return reel.Response{}, fmt.Errorf("messenger: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	id := kit.GetRequestID(ctx)
	if id == "" {
		id = newMessageID()
	}
	req.Header.Set("X-Request-ID", id)

	hr, err := m.Client.Do(req)
	if err != nil {
		return reel.Response{}, fmt.Errorf("messenger: do: %w", err)
	}
	defer hr.Body.Close()

	if hr.StatusCode != http.StatusOK {
		return reel.Response{}, fmt.Errorf("messenger: http %d", hr.StatusCode)
	}
	data, err := horosafe.LimitedReadAll(hr.Body, 64<<10)
	if err != nil {
		return reel.Response{}, fmt.Errorf("messenger: read: %w", err)
	}
	var out reel.Response
	if err := json.Unmarshal(data, &out); err != nil {
		return reel.Response{}, fmt.Errorf("messenger: decode: %w", err)
	}
	return out, nil
}
