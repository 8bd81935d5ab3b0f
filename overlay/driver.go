package overlay

import (
	"context"

	"github.com/hazyhaar/reelkeeper/reel"
)

// DownloadState is the download button's affordance.
type DownloadState string

const (
	DownloadIdle   DownloadState = "idle"
	DownloadBusy   DownloadState = "busy"
	DownloadDone   DownloadState = "done"
	DownloadFailed DownloadState = "failed"
)

// VolumeIcon is the mute button's glyph.
type VolumeIcon string

const (
	IconMuted VolumeIcon = "muted"
	IconLow   VolumeIcon = "low"
	IconHigh  VolumeIcon = "high"
)

// ControlsState is what every volume widget on the page displays.
type ControlsState struct {
	Slider int        `json:"slider"` // 0..100
	Icon   VolumeIcon `json:"icon"`
}

// ControlsFor derives the widget state from preferences.
func ControlsFor(p reel.Preferences) ControlsState {
	icon := IconHigh
	switch v := p.Effective(); {
	case v == 0:
		icon = IconMuted
	case v < 0.5:
		icon = IconLow
	}
	return ControlsState{Slider: p.SliderValue(), Icon: icon}
}

// Driver performs the page-side effects. Element arguments are data-rk-id
// values from a Snapshot.
type Driver interface {
	// Location returns the page's current URL.
	Location(ctx context.Context) (string, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	// InjectControls inserts the controls block as the container's first
	// child.
	InjectControls(ctx context.Context, containerID string, st ControlsState) error
	// RemoveControls removes every injected controls block.
	RemoveControls(ctx context.Context) error
	// SyncControls updates every volume widget on the page.
	SyncControls(ctx context.Context, st ControlsState) error
	// WatchVideo makes the page forward the video's lifecycle events.
	WatchVideo(ctx context.Context, videoID string) error
	ApplyVolume(ctx context.Context, videoID string, p reel.Preferences) error
	SetDownloadState(ctx context.Context, containerID string, st DownloadState, message string) error
}

// Messenger carries a download request to the resolver.
type Messenger interface {
	Send(ctx context.Context, msg reel.Message) reel.Response
}
