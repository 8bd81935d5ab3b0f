package reel

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIdentifier indicates the URL does not name a reel, post or tv item.
	ErrNoIdentifier = errors.New("could not extract shortcode from URL")
	// ErrNoMediaData indicates the GraphQL answer carried no media object,
	// which usually means the host wants an authenticated session.
	ErrNoMediaData = errors.New("no media data in GraphQL response. Try logging in to Instagram")
	// ErrNoVideoURL indicates the media object has no playable video.
	ErrNoVideoURL = errors.New("no video URL found in response")
)

// PrimaryLookupError reports a failed media-info lookup. It is never
// surfaced to callers on its own: it triggers the GraphQL fallback.
type PrimaryLookupError struct {
	Status int // 0 when the request did not complete
	Cause  error
}

func (e *PrimaryLookupError) Error() string {
	switch {
	case e.Cause != nil && e.Status != 0:
		return fmt.Sprintf("media info lookup failed: %d: %v", e.Status, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("media info lookup failed: %v", e.Cause)
	default:
		return fmt.Sprintf("media info lookup failed: %d", e.Status)
	}
}

func (e *PrimaryLookupError) Unwrap() error { return e.Cause }

// GraphQLRequestError reports a non-2xx answer from the GraphQL endpoint.
type GraphQLRequestError struct {
	Status int
}

func (e *GraphQLRequestError) Error() string {
	return fmt.Sprintf("GraphQL request failed: %d", e.Status)
}

// DispatchError reports that the resolved media could not be saved.
type DispatchError struct {
	Cause error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("download dispatch failed: %v", e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// UnknownError carries any other failure across the message boundary.
type UnknownError struct {
	Msg string
}

func (e *UnknownError) Error() string {
	if e.Msg == "" {
		return "unknown error"
	}
	return e.Msg
}
