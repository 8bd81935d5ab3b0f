package mutation

// Kind tags an Event.
type Kind string

const (
	KindMutation      Kind = "mutation"
	KindVideo         Kind = "video"
	KindVolumeInput   Kind = "volume_input"
	KindMuteToggle    Kind = "mute_toggle"
	KindDownloadClick Kind = "download_click"
	KindNavigate      Kind = "navigate"
)

// Video lifecycle event names that the page forwards.
const (
	VideoVolumeChange   = "volumechange"
	VideoLoadedMetadata = "loadedmetadata"
	VideoPlay           = "play"
	VideoCanPlay        = "canplay"
)

// Event is one message from the page.
type Event struct {
	Kind Kind `json:"kind"`

	// KindMutation
	Batch *Batch `json:"batch,omitempty"`

	// KindVideo
	VideoID string `json:"video_id,omitempty"`
	Name    string `json:"name,omitempty"`

	// KindVolumeInput, KindMuteToggle, KindDownloadClick: the action
	// container hosting the control.
	ContainerID string `json:"container_id,omitempty"`
	// KindVolumeInput: slider position 0..100.
	Value int `json:"value,omitempty"`

	// KindNavigate
	URL string `json:"url,omitempty"`

	At int64 `json:"at,omitempty"` // epoch milliseconds
}
