package reel

// DefaultVolume applies until the user moves the slider for the first time.
const DefaultVolume = 0.5

// Preferences is the user-controlled playback state, one per page.
type Preferences struct {
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// DefaultPreferences returns the state used before anything is persisted.
func DefaultPreferences() Preferences {
	return Preferences{Volume: DefaultVolume}
}

// Effective is the playback volume a video should have. Muted forces 0.
func (p Preferences) Effective() float64 {
	if p.Muted {
		return 0
	}
	return p.Volume
}

// Clamp bounds Volume to [0,1].
func (p Preferences) Clamp() Preferences {
	switch {
	case p.Volume < 0:
		p.Volume = 0
	case p.Volume > 1:
		p.Volume = 1
	}
	return p
}

// FromSlider derives preferences from a 0..100 slider position. Zero mutes.
func FromSlider(value int) Preferences {
	p := Preferences{Volume: float64(value) / 100, Muted: value == 0}
	return p.Clamp()
}

// SliderValue is the slider position showing p.
func (p Preferences) SliderValue() int {
	if p.Muted {
		return 0
	}
	return int(p.Volume*100 + 0.5)
}
