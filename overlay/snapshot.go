// Package overlay finds the reel player's anchors in a DOM it does not own
// and keeps the volume widget and download button attached to them while
// the page scrolls and re-renders.
//
// Every decision here is made on a Snapshot: a stripped copy of the page
// DOM in which each element carries a stable data-rk-id, and videos and
// action-bar candidates carry their layout box. The browser side lives
// behind the Driver interface.
package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Attributes the page script writes into the snapshot.
const (
	AttrID       = "data-rk-id"
	AttrTop      = "data-rk-top"
	AttrHeight   = "data-rk-height"
	AttrViewport = "data-rk-vh"

	// ControlsClass marks the injected controls block in the live DOM.
	ControlsClass = "reelkeeper-controls"
)

// Box is a vertical layout extent in viewport pixels.
type Box struct {
	Top    float64
	Height float64
}

// Center is the vertical center of the box.
func (b Box) Center() float64 { return b.Top + b.Height/2 }

// VideoHandle identifies a <video> element.
type VideoHandle struct {
	ID string
	Box
}

// ContainerHandle identifies an action-bar container.
type ContainerHandle struct {
	ID string
	Box
	// HasControls is set when the controls block is already inside it.
	HasControls bool
}

// Snapshot is a parsed DOM skeleton.
type Snapshot struct {
	doc            *goquery.Document
	viewportHeight float64
}

// ParseSnapshot parses the skeleton HTML produced by the page script.
func ParseSnapshot(html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("overlay: parse snapshot: %w", err)
	}
	s := &Snapshot{doc: doc}
	if vh, ok := doc.Find("[" + AttrViewport + "]").First().Attr(AttrViewport); ok {
		s.viewportHeight, _ = strconv.ParseFloat(vh, 64)
	}
	return s, nil
}

// ViewportHeight is the window's inner height when the snapshot was taken.
func (s *Snapshot) ViewportHeight() float64 { return s.viewportHeight }

// Videos returns every video in document order.
func (s *Snapshot) Videos() []VideoHandle {
	var out []VideoHandle
	s.doc.Find("video").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := sel.Attr(AttrID); ok {
			out = append(out, VideoHandle{ID: id, Box: boxOf(sel)})
		}
	})
	return out
}

// IDs returns the set of element ids present in the snapshot.
func (s *Snapshot) IDs() map[string]struct{} {
	ids := map[string]struct{}{}
	s.doc.Find("[" + AttrID + "]").Each(func(_ int, sel *goquery.Selection) {
		id, _ := sel.Attr(AttrID)
		ids[id] = struct{}{}
	})
	return ids
}

// Has reports whether an element with id is present.
func (s *Snapshot) Has(id string) bool {
	return s.byID(id).Length() > 0
}

func (s *Snapshot) byID(id string) *goquery.Selection {
	return s.doc.Find("[" + AttrID + "=\"" + cssEscape(id) + "\"]")
}

func (s *Snapshot) container(sel *goquery.Selection) ContainerHandle {
	id, _ := sel.Attr(AttrID)
	return ContainerHandle{
		ID:          id,
		Box:         boxOf(sel),
		HasControls: sel.Find("."+ControlsClass).Length() > 0,
	}
}

func boxOf(sel *goquery.Selection) Box {
	var b Box
	if v, ok := sel.Attr(AttrTop); ok {
		b.Top, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := sel.Attr(AttrHeight); ok {
		b.Height, _ = strconv.ParseFloat(v, 64)
	}
	return b
}

func cssEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
