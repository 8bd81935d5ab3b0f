package resolver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/reelkeeper/reel"
)

func TestRouter_Healthz(t *testing.T) {
	srv := httptest.NewServer(New(Config{}).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("got %d %q", resp.StatusCode, body)
	}
}

func TestRouter_MalformedMessage(t *testing.T) {
	// WHAT: Bad JSON still gets a 200 with a failure Response.
	srv := httptest.NewServer(New(Config{}).Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/messages", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var out reel.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Success || !strings.Contains(out.Error, "malformed message") {
		t.Errorf("got %+v", out)
	}
}

func TestRemote_RoundTrip(t *testing.T) {
	f, client := newFakeInstagram(t)
	f.info = jsonBody(`{"items":[{"video_url":"https://cdn/remote.mp4"}]}`)

	d := &fakeDispatcher{}
	srv := httptest.NewServer(New(Config{}, WithHTTPClient(client), WithDispatcher(d)).Router())
	defer srv.Close()

	m := NewRemote(srv.URL + "/")
	resp := m.Send(context.Background(), reel.Message{Type: reel.TypeDownloadReel, URL: testPageURL})
	if !resp.Success || resp.DownloadURL != "https://cdn/remote.mp4" {
		t.Fatalf("got %+v", resp)
	}
	if len(d.jobs) != 1 {
		t.Errorf("jobs: %d", len(d.jobs))
	}

	resp = m.Send(context.Background(), reel.Message{Type: reel.TypeDownloadReel, URL: "https://www.instagram.com/"})
	if resp.Success || resp.Error != reel.ErrNoIdentifier.Error()+": https://www.instagram.com/" {
		t.Errorf("failure not carried across: %+v", resp)
	}
}

func TestRemote_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	resp := NewRemote(srv.URL).Send(context.Background(), reel.Message{Type: reel.TypeDownloadReel, URL: testPageURL})
	if resp.Success || !strings.Contains(resp.Error, "messenger:") {
		t.Errorf("got %+v", resp)
	}
}

func TestLocal_Send(t *testing.T) {
	f, client := newFakeInstagram(t)
	f.info = jsonBody(`{"items":[{"video_url":"https://cdn/local.mp4"}]}`)

	resp := Local{R: New(Config{}, WithHTTPClient(client))}.Send(context.Background(),
		reel.Message{Type: reel.TypeDownloadReel, URL: testPageURL})
	if !resp.Success || resp.DownloadURL != "https://cdn/local.mp4" {
		t.Fatalf("got %+v", resp)
	}
}
