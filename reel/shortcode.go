// Package reel defines the contract shared by the page overlay and the
// media resolver: shortcode handling, the download message protocol, the
// error taxonomy and the persisted playback preferences.
package reel

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Alphabet maps shortcode characters to their 6-bit values.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// MaxShortcodeLen is the longest shortcode decoded as-is. Longer codes carry
// a prefix the host ignores; only the trailing MaxShortcodeLen characters
// encode the primary key.
const MaxShortcodeLen = 28

var shortcodePattern = regexp.MustCompile(`/(p|tv|reels?)/([^/?#&]+)`)

// ExtractShortcode returns the post identifier embedded in a /p/, /tv/,
// /reel/ or /reels/ URL. Audio pages (/reels/audio/...) are not posts.
func ExtractShortcode(rawURL string) (string, error) {
	for _, m := range shortcodePattern.FindAllStringSubmatchIndex(rawURL, -1) {
		keyword := rawURL[m[2]:m[3]]
		if strings.HasPrefix(keyword, "reel") && strings.HasPrefix(rawURL[m[3]:], "/audio/") {
			continue
		}
		return rawURL[m[4]:m[5]], nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoIdentifier, rawURL)
}

// ShortcodeToPK decodes a shortcode into the numeric primary key.
func ShortcodeToPK(code string) (*big.Int, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty shortcode", ErrNoIdentifier)
	}
	if len(code) > MaxShortcodeLen {
		code = code[len(code)-MaxShortcodeLen:]
	}

	pk := new(big.Int)
	base := big.NewInt(64)
	for _, c := range code {
		v := strings.IndexRune(Alphabet, c)
		if v < 0 {
			return nil, fmt.Errorf("%w: invalid shortcode character %q", ErrNoIdentifier, c)
		}
		pk.Mul(pk, base)
		pk.Add(pk, big.NewInt(int64(v)))
	}
	return pk, nil
}

// IsReelPath reports whether path belongs to the reel-viewing route.
// marker defaults to "/reels/".
func IsReelPath(path, marker string) bool {
	if marker == "" {
		marker = DefaultRouteMarker
	}
	return strings.Contains(path, marker)
}

// DefaultRouteMarker is the path substring identifying the reel feed.
const DefaultRouteMarker = "/reels/"
