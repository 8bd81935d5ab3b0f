package overlay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/reelkeeper/reel"
)

// reelsPage is a skeleton of two stacked reels, each with a video and an
// action bar of four buttons.
const reelsPage = `<html><body data-rk-id="1" data-rk-vh="1000">
<main data-rk-id="2">
  <section data-rk-id="10">
    <div data-rk-id="11"><video data-rk-id="12" data-rk-top="0" data-rk-height="1000"></video></div>
    <div data-rk-id="13" data-rk-top="600" data-rk-height="300">
      <div data-rk-id="14"><span data-rk-id="140"><svg aria-label="Like"></svg></span></div>
      <div data-rk-id="15"><svg aria-label="Comment"></svg></div>
      <div data-rk-id="16"><svg aria-label="Share"></svg></div>
      <div data-rk-id="17"><svg aria-label="Save"></svg></div>
    </div>
  </section>
  <section data-rk-id="20">
    <div data-rk-id="21"><video data-rk-id="22" data-rk-top="1000" data-rk-height="1000"></video></div>
    <div data-rk-id="23" data-rk-top="1600" data-rk-height="300">
      <div data-rk-id="24"><svg aria-label="Unlike"></svg></div>
      <div data-rk-id="25"><svg aria-label="Comment"></svg></div>
      <div data-rk-id="26"><svg aria-label="Share"></svg></div>
      <div data-rk-id="27"><svg aria-label="Save"></svg></div>
    </div>
  </section>
</main>
</body></html>`

const (
	reelURL    = "https://www.instagram.com/reels/DAbc/"
	exploreURL = "https://www.instagram.com/explore/"
)

type fakeDriver struct {
	mu       sync.Mutex
	location string
	html     string
	calls    []string
}

func newFakeDriver(location, html string) *fakeDriver {
	return &fakeDriver{location: location, html: html}
}

func (f *fakeDriver) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeDriver) setLocation(loc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location = loc
}

func (f *fakeDriver) replaceHTML(old, repl string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.html = strings.Replace(f.html, old, repl, 1)
}

// count returns how many recorded calls start with prefix.
func (f *fakeDriver) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeDriver) has(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

// sideEffects counts every call that would change the page.
func (f *fakeDriver) sideEffects() int {
	n := 0
	for _, p := range []string{"inject:", "remove", "sync:", "watch:", "apply:", "state:"} {
		n += f.count(p)
	}
	return n
}

func (f *fakeDriver) Location(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location, nil
}

func (f *fakeDriver) Snapshot(context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("snapshot")
	return ParseSnapshot(f.html)
}

func (f *fakeDriver) InjectControls(_ context.Context, id string, st ControlsState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("inject:%s", id)
	marker := `data-rk-id="` + id + `"`
	i := strings.Index(f.html, marker)
	if i < 0 {
		return fmt.Errorf("no element %s", id)
	}
	j := i + strings.Index(f.html[i:], ">") + 1
	f.html = f.html[:j] + `<div class="` + ControlsClass + `" data-rk-id="c` + id + `"></div>` + f.html[j:]
	return nil
}

func (f *fakeDriver) RemoveControls(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove")
	return nil
}

func (f *fakeDriver) SyncControls(_ context.Context, st ControlsState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("sync:%d:%s", st.Slider, st.Icon)
	return nil
}

func (f *fakeDriver) WatchVideo(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("watch:%s", id)
	return nil
}

func (f *fakeDriver) ApplyVolume(_ context.Context, id string, p reel.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("apply:%s:%g:%t", id, p.Volume, p.Muted)
	return nil
}

func (f *fakeDriver) SetDownloadState(_ context.Context, id string, st DownloadState, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("state:%s:%s:%s", id, st, msg)
	return nil
}

type fakeMessenger struct {
	mu   sync.Mutex
	resp reel.Response
	sent []reel.Message
}

func (m *fakeMessenger) Send(_ context.Context, msg reel.Message) reel.Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.resp
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
