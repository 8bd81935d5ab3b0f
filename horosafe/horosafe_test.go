package horosafe

import (
	"errors"
	"strings"
	"testing"
)

func TestSafePath(t *testing.T) {
	tests := []struct {
		dir, name string
		wantErr   bool
	}{
		{"/data/reels", "reel_DAbc_1700000000000.mp4", false},
		{"/data/reels", "../etc/passwd", true},
		{"/data/reels", "a/../../outside", true},
		{"/data/reels", "", true},
		{"/data/reels", "/", true},
		{".", "reel_DAbc_1700000000000.mp4", false},
		{".", "../reel.mp4", true},
		{"/", "reel_DAbc_1700000000000.mp4", false},
		{"/", "/", true},
		{"reels/", "reel.mp4", false},
	}
	for _, tt := range tests {
		_, err := SafePath(tt.dir, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("SafePath(%q, %q) error=%v, wantErr=%v", tt.dir, tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://93.184.216.34/v.mp4", false},
		{"ftp://cdn.example/v.mp4", true},
		{"javascript:alert(1)", true},
		{"http://127.0.0.1/admin", true},
		{"http://10.0.0.1/internal", true},
		{"http://192.168.1.1/api", true},
		{"http://[::1]/api", true},
		{"http://[::ffff:127.0.0.1]/api", true},
		{"http://0.0.0.0/", true},
		{"https:///nohost", true},
	}
	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error=%v, wantErr=%v", tt.url, err, tt.wantErr)
		}
	}
}

func TestIsInstagramHost(t *testing.T) {
	for host, want := range map[string]bool{
		"www.instagram.com":  true,
		"i.instagram.com":    true,
		"instagram.com.":     true,
		"evilinstagram.com":  false,
		"instagram.com.evil": false,
	} {
		if got := IsInstagramHost(host); got != want {
			t.Errorf("IsInstagramHost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data, err := LimitedReadAll(strings.NewReader("hello"), 10)
	if err != nil || string(data) != "hello" {
		t.Fatalf("got %q, %v", data, err)
	}
	if _, err := LimitedReadAll(strings.NewReader(strings.Repeat("x", 11)), 10); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
}
