package overlay

import "github.com/hazyhaar/reelkeeper/domwatch/mutation"

// DefaultEnforceLimit is how many lifecycle events per video re-apply the
// preference before the enforcer stops reacting.
const DefaultEnforceLimit = 10

// TrackedVideo is a video whose lifecycle events are being watched.
type TrackedVideo struct {
	ID     string
	Events int // qualifying events seen so far
}

// Enforcer decides when a video's volume must be re-applied.
type Enforcer struct {
	limit  int
	videos map[string]*TrackedVideo
}

func NewEnforcer(limit int) *Enforcer {
	if limit <= 0 {
		limit = DefaultEnforceLimit
	}
	return &Enforcer{limit: limit, videos: map[string]*TrackedVideo{}}
}

// Track registers a video. It returns true the first time it sees id, when
// the caller must attach the event listeners.
func (e *Enforcer) Track(id string) bool {
	if _, ok := e.videos[id]; ok {
		return false
	}
	e.videos[id] = &TrackedVideo{ID: id}
	return true
}

// OnEvent counts a lifecycle event and reports whether the preference
// should be re-applied. Untracked videos and non-qualifying events never
// are.
func (e *Enforcer) OnEvent(id, name string) bool {
	v, ok := e.videos[id]
	if !ok || !Qualifying(name) {
		return false
	}
	v.Events++
	return v.Events <= e.limit
}

// Qualifying reports whether a video event name triggers enforcement.
func Qualifying(name string) bool {
	switch name {
	case mutation.VideoVolumeChange, mutation.VideoLoadedMetadata, mutation.VideoPlay, mutation.VideoCanPlay:
		return true
	}
	return false
}

// IDs returns the tracked video ids.
func (e *Enforcer) IDs() []string {
	ids := make([]string, 0, len(e.videos))
	for id := range e.videos {
		ids = append(ids, id)
	}
	return ids
}

// Get returns the tracking record for id.
func (e *Enforcer) Get(id string) (TrackedVideo, bool) {
	v, ok := e.videos[id]
	if !ok {
		return TrackedVideo{}, false
	}
	return *v, true
}

// Prune drops videos no longer in present.
func (e *Enforcer) Prune(present map[string]struct{}) int {
	n := 0
	for id := range e.videos {
		if _, ok := present[id]; !ok {
			delete(e.videos, id)
			n++
		}
	}
	return n
}

// Reset drops every video.
func (e *Enforcer) Reset() { clear(e.videos) }
