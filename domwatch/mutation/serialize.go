package mutation

import (
	"encoding/json"
	"fmt"
)

// Encode serialises an Event to JSON.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses one binding payload. Unknown kinds and events missing their
// required fields are rejected.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("mutation: decode: %w", err)
	}
	if err := e.validate(); err != nil {
		return Event{}, err
	}
	if e.Batch != nil {
		e.Batch.Records = Compact(e.Batch.Records)
	}
	return e, nil
}

func (e *Event) validate() error {
	switch e.Kind {
	case KindMutation:
		if e.Batch == nil {
			return fmt.Errorf("mutation: %s event without batch", e.Kind)
		}
	case KindVideo:
		if e.VideoID == "" || e.Name == "" {
			return fmt.Errorf("mutation: %s event without video id or name", e.Kind)
		}
	case KindVolumeInput:
		if e.Value < 0 || e.Value > 100 {
			return fmt.Errorf("mutation: slider value %d out of range", e.Value)
		}
	case KindMuteToggle, KindDownloadClick:
		if e.ContainerID == "" {
			return fmt.Errorf("mutation: %s event without container id", e.Kind)
		}
	case KindNavigate:
		if e.URL == "" {
			return fmt.Errorf("mutation: %s event without url", e.Kind)
		}
	default:
		return fmt.Errorf("mutation: unknown event kind %q", e.Kind)
	}
	return nil
}
