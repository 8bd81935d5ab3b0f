package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/hazyhaar/reelkeeper/reel"
)

type videoVersion struct {
	Type   int    `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

type mediaItem struct {
	VideoURL      string         `json:"video_url"`
	VideoVersions []videoVersion `json:"video_versions"`
	CarouselMedia []mediaItem    `json:"carousel_media"`
}

type infoResponse struct {
	Items []mediaItem `json:"items"`
}

// videoURL picks the media URL from a media-info body: items[0].video_url,
// then items[0].video_versions[0].url, then the first carousel child that
// has video versions. It returns "" when no path yields a URL.
func (b *infoResponse) videoURL() string {
	if len(b.Items) == 0 {
		return ""
	}
	item := b.Items[0]
	if item.VideoURL != "" {
		return item.VideoURL
	}
	if len(item.VideoVersions) > 0 && item.VideoVersions[0].URL != "" {
		return item.VideoVersions[0].URL
	}
	for _, child := range item.CarouselMedia {
		if len(child.VideoVersions) > 0 && child.VideoVersions[0].URL != "" {
			return child.VideoVersions[0].URL
		}
	}
	return ""
}

// lookupInfo queries the media-info endpoint. Every failure is a
// *reel.PrimaryLookupError.
func (r *Resolver) lookupInfo(ctx context.Context, pk *big.Int) (string, error) {
	endpoint := r.cfg.InfoURL + pk.String() + "/info/"

	status, body, err := r.get(ctx, endpoint, nil)
	if err != nil {
		return "", &reel.PrimaryLookupError{Status: status, Cause: err}
	}
	if !is2xx(status) {
		return "", &reel.PrimaryLookupError{Status: status}
	}

	var info infoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return "", &reel.PrimaryLookupError{Status: status, Cause: fmt.Errorf("decode: %w", err)}
	}
	u := info.videoURL()
	if u == "" {
		return "", &reel.PrimaryLookupError{Status: status, Cause: reel.ErrNoVideoURL}
	}
	return u, nil
}
