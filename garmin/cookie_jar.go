package garmin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"
)

// cookieDomains are the origins whose cookies get persisted between runs.
var cookieDomains = []string{
	"https://connect.garmin.com",
	"https://sso.garmin.com",
}

// persistentCookieJar implements a cookie jar that persists cookies to disk
type persistentCookieJar struct {
	*cookiejar.Jar
	path string
	mu   sync.Mutex
}

// cookieEntry represents a single cookie entry for serialization
type cookieEntry struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	MaxAge   int       `json:"max_age"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"http_only"`
	SameSite int       `json:"same_site"`
}

// newPersistentCookieJar creates a new persistent cookie jar
func newPersistentCookieJar(path string) (*persistentCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	pjar := &persistentCookieJar{
		Jar:  jar,
		path: path,
	}

	// Try to load existing cookies
	if err := pjar.load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load cookies: %w", err)
		}
	}

	return pjar, nil
}

// SetCookies implements the http.CookieJar interface
func (j *persistentCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Jar.SetCookies(u, cookies)

	// Save cookies after setting them; a failed save must not fail the request
	if err := j.save(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save cookies: %v\n", err)
	}
}

// persist saves the jar under the lock, for callers outside SetCookies
func (j *persistentCookieJar) persist() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.save()
}

// load reads cookies from the file and seeds the jar with them
func (j *persistentCookieJar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return err
	}

	var entries map[string][]cookieEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal cookies: %w", err)
	}

	for origin, originEntries := range entries {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}

		cookies := make([]*http.Cookie, len(originEntries))
		for i, entry := range originEntries {
			cookies[i] = &http.Cookie{
				Name:     entry.Name,
				Value:    entry.Value,
				Path:     entry.Path,
				Domain:   entry.Domain,
				Expires:  entry.Expires,
				MaxAge:   entry.MaxAge,
				Secure:   entry.Secure,
				HttpOnly: entry.HttpOnly,
				SameSite: http.SameSite(entry.SameSite),
			}
		}
		j.Jar.SetCookies(u, cookies)
	}

	return nil
}

// save writes cookies to the file, keyed by origin
func (j *persistentCookieJar) save() error {
	entries := make(map[string][]cookieEntry)
	for _, origin := range cookieDomains {
		u, err := url.Parse(origin)
		if err != nil {
			continue
		}

		for _, cookie := range j.Jar.Cookies(u) {
			entries[origin] = append(entries[origin], cookieEntry{
				Name:     cookie.Name,
				Value:    cookie.Value,
				Domain:   cookie.Domain,
				Path:     cookie.Path,
				Expires:  cookie.Expires,
				MaxAge:   cookie.MaxAge,
				Secure:   cookie.Secure,
				HttpOnly: cookie.HttpOnly,
				SameSite: int(cookie.SameSite),
			})
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	if err := os.WriteFile(j.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cookies: %w", err)
	}

	return nil
}
