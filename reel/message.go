package reel

import "errors"

// TypeDownloadReel is the only message type the resolver understands.
const TypeDownloadReel = "DOWNLOAD_REEL"

// Message is sent from the page overlay to the resolver.
type Message struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Response is the single reply to a Message.
type Response struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Succeeded builds a success response for mediaURL.
func Succeeded(mediaURL string) Response {
	return Response{Success: true, DownloadURL: mediaURL}
}

// Failed builds a failure response from err, preserving its message.
func Failed(err error) Response {
	if err == nil {
		err = &UnknownError{}
	}
	return Response{Success: false, Error: err.Error()}
}

// Err converts a failure response back into an error. It returns nil for
// successful responses.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return errors.New("download failed")
	}
	return errors.New(r.Error)
}
