package reel

import (
	"errors"
	"testing"
)

func TestPreferences_Effective(t *testing.T) {
	p := Preferences{Volume: 0.8, Muted: true}
	if got := p.Effective(); got != 0 {
		t.Errorf("muted effective volume: got %v, want 0", got)
	}
	p.Muted = false
	if got := p.Effective(); got != 0.8 {
		t.Errorf("effective volume: got %v, want 0.8", got)
	}
}

func TestFromSlider(t *testing.T) {
	p := FromSlider(0)
	if !p.Muted || p.Volume != 0 {
		t.Errorf("slider 0: got %+v, want muted", p)
	}
	p = FromSlider(35)
	if p.Muted || p.Volume != 0.35 {
		t.Errorf("slider 35: got %+v", p)
	}
	p = FromSlider(250)
	if p.Volume != 1 {
		t.Errorf("slider 250: volume %v, want clamped to 1", p.Volume)
	}
	if got := (Preferences{Volume: 0.35}).SliderValue(); got != 35 {
		t.Errorf("SliderValue: got %d, want 35", got)
	}
	if got := (Preferences{Volume: 0.35, Muted: true}).SliderValue(); got != 0 {
		t.Errorf("muted SliderValue: got %d, want 0", got)
	}
}

func TestResponse(t *testing.T) {
	ok := Succeeded("https://cdn.example/v.mp4")
	if !ok.Success || ok.Err() != nil {
		t.Fatalf("Succeeded: %+v", ok)
	}

	fail := Failed(&GraphQLRequestError{Status: 401})
	if fail.Success {
		t.Fatal("Failed: success flag set")
	}
	if fail.Error != "GraphQL request failed: 401" {
		t.Errorf("Failed: error %q", fail.Error)
	}
	if fail.Err() == nil {
		t.Error("Err(): nil for failure")
	}

	if got := Failed(nil).Error; got != "unknown error" {
		t.Errorf("Failed(nil): %q", got)
	}

	wrapped := &DispatchError{Cause: errors.New("disk full")}
	if !errors.Is(wrapped, wrapped.Cause) {
		t.Error("DispatchError does not unwrap")
	}
}
