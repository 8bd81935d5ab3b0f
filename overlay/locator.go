package overlay

import (
	"math"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

// ActionKind is one of the four buttons in a reel's action bar.
type ActionKind string

const (
	ActionLike    ActionKind = "like"
	ActionComment ActionKind = "comment"
	ActionShare   ActionKind = "share"
	ActionSave    ActionKind = "save"
)

var actionKinds = []ActionKind{ActionLike, ActionComment, ActionShare, ActionSave}

// Labels maps each action kind to the aria-label values its icon can carry.
type Labels map[ActionKind][]string

// DefaultLabels covers English, Spanish, French, German, Portuguese and
// Italian, including the toggled state of like and save.
func DefaultLabels() Labels {
	return Labels{
		ActionLike: {
			"Like", "Unlike",
			"Me gusta", "Ya no me gusta",
			"J’aime", "J'aime", "Je n’aime plus", "Je n'aime plus",
			"Gefällt mir", "Gefällt mir nicht mehr",
			"Curtir", "Descurtir",
			"Mi piace", "Non mi piace più",
		},
		ActionComment: {"Comment", "Comentar", "Commenter", "Kommentieren", "Commenta"},
		ActionShare:   {"Share", "Share Post", "Compartir", "Partager", "Teilen", "Compartilhar", "Condividi"},
		ActionSave:    {"Save", "Remove", "Guardar", "Enregistrer", "Speichern", "Salvar", "Salva"},
	}
}

// Locator finds anchors in snapshots.
type Locator struct {
	labels map[ActionKind]map[string]struct{}
}

// NewLocator builds a Locator. Extra labels are merged into the defaults.
func NewLocator(extra Labels) *Locator {
	l := &Locator{labels: map[ActionKind]map[string]struct{}{}}
	for _, src := range []Labels{DefaultLabels(), extra} {
		for kind, names := range src {
			if l.labels[kind] == nil {
				l.labels[kind] = map[string]struct{}{}
			}
			for _, n := range names {
				l.labels[kind][n] = struct{}{}
			}
		}
	}
	return l
}

// LocateActiveVideo returns the video whose vertical center is closest to
// the viewport's. Videos with zero height are skipped. Ties go to the
// first in document order.
func (l *Locator) LocateActiveVideo(s *Snapshot) (VideoHandle, bool) {
	mid := s.ViewportHeight() / 2
	best, found := VideoHandle{}, false
	bestDist := math.Inf(1)
	for _, v := range s.Videos() {
		if v.Height <= 0 {
			continue
		}
		if d := math.Abs(v.Center() - mid); d < bestDist {
			best, bestDist, found = v, d, true
		}
	}
	return best, found
}

// LocateActionContainers walks up from each like icon to the nearest
// ancestor that holds all four action icons and at least four direct
// children. The walk stops below <body>. Results are unique by id.
func (l *Locator) LocateActionContainers(s *Snapshot) []ContainerHandle {
	var out []ContainerHandle
	l.markers(s.doc.Selection, ActionLike).Each(func(_ int, like *goquery.Selection) {
		for p := like.Parent(); p.Length() > 0 && !p.Is("body, html"); p = p.Parent() {
			if p.Children().Length() >= 4 && l.hasAllActions(p) {
				if c := s.container(p); c.ID != "" {
					out = append(out, c)
				}
				return
			}
		}
	})
	return lo.UniqBy(out, func(c ContainerHandle) string { return c.ID })
}

// VideoForContainer pairs a container with a video: the first video under
// one of its ancestors, else the video closest to it vertically.
func (l *Locator) VideoForContainer(s *Snapshot, c ContainerHandle) (VideoHandle, bool) {
	sel := s.byID(c.ID)
	if sel.Length() == 0 {
		return VideoHandle{}, false
	}
	for p := sel.Parent(); p.Length() > 0 && !p.Is("body, html"); p = p.Parent() {
		if v := p.Find("video").First(); v.Length() > 0 {
			id, _ := v.Attr(AttrID)
			return VideoHandle{ID: id, Box: boxOf(v)}, true
		}
	}

	target := c.Center()
	best, found := VideoHandle{}, false
	bestDist := math.Inf(1)
	for _, v := range s.Videos() {
		if v.Height <= 0 {
			continue
		}
		if d := math.Abs(v.Center() - target); d < bestDist {
			best, bestDist, found = v, d, true
		}
	}
	return best, found
}

func (l *Locator) hasAllActions(sel *goquery.Selection) bool {
	for _, k := range actionKinds {
		if l.markers(sel, k).Length() == 0 {
			return false
		}
	}
	return true
}

func (l *Locator) markers(sel *goquery.Selection, kind ActionKind) *goquery.Selection {
	names := l.labels[kind]
	return sel.Find("svg[aria-label]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		label, _ := s.Attr("aria-label")
		_, ok := names[label]
		return ok
	})
}
