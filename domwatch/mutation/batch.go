// Package mutation defines what the page reports back to Go: batches of DOM
// insertions and removals, video lifecycle events, and input on the
// injected controls. The page script produces these as JSON; the overlay
// session consumes them.
package mutation

// Op is the type of DOM mutation observed.
type Op string

const (
	OpInsert Op = "insert"
	OpRemove Op = "remove"
)

// Record is one inserted or removed element. Text and attribute changes are
// not reported: nothing downstream reacts to them.
type Record struct {
	Op  Op     `json:"op"`
	ID  string `json:"id,omitempty"` // data-rk-id of the node, when it has one
	Tag string `json:"tag,omitempty"`
	// HasVideo is set when the node is, or contains, a <video>.
	HasVideo bool `json:"has_video,omitempty"`
	// HasMarker is set when the node contains a labelled icon.
	HasMarker bool `json:"has_marker,omitempty"`
}

// Batch is every record from one MutationObserver callback.
type Batch struct {
	Seq       uint64   `json:"seq"` // per page, for gap detection
	PageURL   string   `json:"page_url"`
	Records   []Record `json:"records"`
	Timestamp int64    `json:"timestamp"` // epoch milliseconds
}

// Relevant reports whether the batch inserted a video or an action marker.
func (b *Batch) Relevant() bool {
	for _, r := range b.Records {
		if r.Op == OpInsert && (r.HasVideo || r.HasMarker) {
			return true
		}
	}
	return false
}

// Compact drops records that cancel out within the batch: an element
// inserted then removed again before the callback ran. Order is kept.
func Compact(records []Record) []Record {
	if len(records) <= 1 {
		return records
	}
	inserted := map[string]int{}
	drop := map[int]bool{}
	for i, r := range records {
		if r.ID == "" {
			continue
		}
		switch r.Op {
		case OpInsert:
			inserted[r.ID] = i
		case OpRemove:
			if j, ok := inserted[r.ID]; ok {
				drop[i], drop[j] = true, true
				delete(inserted, r.ID)
			}
		}
	}
	if len(drop) == 0 {
		return records
	}
	out := make([]Record, 0, len(records)-len(drop))
	for i, r := range records {
		if !drop[i] {
			out = append(out, r)
		}
	}
	return out
}
