package domwatch

import "github.com/hazyhaar/reelkeeper/reel"

// DefaultStartURL is where a watch session opens.
const DefaultStartURL = "https://www.instagram.com" + reel.DefaultRouteMarker

// Config controls the browser behind a watch session.
type Config struct {
	// Remote is the DevTools WebSocket URL of an already running Chrome.
	Remote string `yaml:"remote"`
	// Profile is the Chrome user-data dir. Keeping it keeps the login.
	Profile  string `yaml:"profile"`
	Bin      string `yaml:"bin"`
	Headless bool   `yaml:"headless"`
	// ResourceBlocking lists resource types to block: images, fonts, stylesheets.
	ResourceBlocking []string `yaml:"resource_blocking"`
	XvfbDisplay      string   `yaml:"xvfb_display"`
	StartURL         string   `yaml:"start_url"`
	// EventBuffer is the capacity of a page's event channel.
	EventBuffer int `yaml:"event_buffer"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.StartURL == "" {
		c.StartURL = DefaultStartURL
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 256
	}
}
