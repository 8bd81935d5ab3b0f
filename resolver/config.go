package resolver

import "strings"

// Config holds the host endpoints and the fixed request identity. Every
// field has a default matching what the web client sends.
type Config struct {
	InfoURL    string `yaml:"info_url"`    // media-info base, pk and "/info/" are appended
	GraphQLURL string `yaml:"graphql_url"` // GraphQL query endpoint
	WebOrigin  string `yaml:"web_origin"`  // Origin header and Referer base
	AppID      string `yaml:"app_id"`
	ASBDID     string `yaml:"asbd_id"`
	UserAgent  string `yaml:"user_agent"`
	DocID      string `yaml:"doc_id"`
}

const (
	defaultInfoURL    = "https://i.instagram.com/api/v1/media/"
	defaultGraphQLURL = "https://www.instagram.com/graphql/query/"
	defaultWebOrigin  = "https://www.instagram.com"
	defaultAppID      = "936619743392459"
	defaultASBDID     = "198387"
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultDocID      = "8845758582119845"
)

// DefaultConfig returns the configuration used by the Instagram web client.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.InfoURL == "" {
		c.InfoURL = defaultInfoURL
	}
	if !strings.HasSuffix(c.InfoURL, "/") {
		c.InfoURL += "/"
	}
	if c.GraphQLURL == "" {
		c.GraphQLURL = defaultGraphQLURL
	}
	if c.WebOrigin == "" {
		c.WebOrigin = defaultWebOrigin
	}
	c.WebOrigin = strings.TrimSuffix(c.WebOrigin, "/")
	if c.AppID == "" {
		c.AppID = defaultAppID
	}
	if c.ASBDID == "" {
		c.ASBDID = defaultASBDID
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.DocID == "" {
		c.DocID = defaultDocID
	}
}
