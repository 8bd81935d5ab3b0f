// Package auth holds the Instagram session credentials used by the resolver
// outside the browser: they live in the OS keyring and are replayed through
// a cookie jar.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "reelkeeper"
	keySessionID   = "sessionid"
	keyCSRFToken   = "csrftoken"
)

// ErrNoCredentials is returned when no session is stored.
var ErrNoCredentials = errors.New("auth: no stored Instagram session (run `reelkeeper login`)")

// Credentials are the host session cookies.
type Credentials struct {
	SessionID string
	CSRFToken string
}

// Cookies returns the credentials as cookie name/value pairs.
func (c Credentials) Cookies() map[string]string {
	out := map[string]string{}
	if c.SessionID != "" {
		out[keySessionID] = c.SessionID
	}
	if c.CSRFToken != "" {
		out[keyCSRFToken] = c.CSRFToken
	}
	return out
}

// Save stores the credentials in the OS keyring. An empty CSRF token
// removes any previously stored one.
func Save(c Credentials) error {
	sid := strings.TrimSpace(c.SessionID)
	if sid == "" {
		return errors.New("auth: empty sessionid")
	}
	if err := keyring.Set(keyringService, keySessionID, sid); err != nil {
		return fmt.Errorf("auth: save sessionid: %w", err)
	}
	if c.CSRFToken == "" {
		if err := keyring.Delete(keyringService, keyCSRFToken); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("auth: clear csrftoken: %w", err)
		}
		return nil
	}
	if err := keyring.Set(keyringService, keyCSRFToken, c.CSRFToken); err != nil {
		return fmt.Errorf("auth: save csrftoken: %w", err)
	}
	return nil
}

// Load reads the credentials from the OS keyring.
func Load() (Credentials, error) {
	sid, err := keyring.Get(keyringService, keySessionID)
	if errors.Is(err, keyring.ErrNotFound) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: load sessionid: %w", err)
	}
	csrf, err := keyring.Get(keyringService, keyCSRFToken)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return Credentials{}, fmt.Errorf("auth: load csrftoken: %w", err)
	}
	return Credentials{SessionID: sid, CSRFToken: csrf}, nil
}

// Clear removes stored credentials. Clearing an empty keyring is not an error.
func Clear() error {
	for _, k := range []string{keySessionID, keyCSRFToken} {
		if err := keyring.Delete(keyringService, k); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("auth: clear %s: %w", k, err)
		}
	}
	return nil
}
