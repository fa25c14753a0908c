package garmin

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	connectURL = "https://connect.garmin.com"
	ssoURL     = "https://sso.garmin.com/sso"
)

var (
	commonHeaders = map[string]string{
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"accept-language":           "en-GB,en;q=0.9,en-US;q=0.8",
		"origin":                    "https://sso.garmin.com",
		"sec-fetch-dest":            "document",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-site":            "same-origin",
		"upgrade-insecure-requests": "1",
	}

	// Common errors, classified for the caller. Sign-in and listing
	// failures wrap exactly one of these.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrConnectionFailed     = errors.New("connection failed")
	ErrRateLimited          = errors.New("too many requests")
)

// Client represents a Garmin Connect client
type Client struct {
	httpClient *http.Client
	jar        *persistentCookieJar
	username   string
	password   string
	cookiePath string
	connectURL string
	ssoURL     string
	logger     *log.Logger
	logLevel   string
}

// New creates a new Garmin Connect client
func New(username, password, cookiePath string) (*Client, error) {
	if cookiePath == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cookiePath = filepath.Join(home, ".garmindump", "cookie.json")
	}

	// Expand home directory if present
	expandedPath, err := homedir.Expand(cookiePath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand cookie path: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cookie directory: %w", err)
	}

	// Create persistent cookie jar
	jar, err := newPersistentCookieJar(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Jar: jar,
	}

	return &Client{
		httpClient: httpClient,
		jar:        jar,
		username:   username,
		password:   password,
		cookiePath: expandedPath,
		connectURL: connectURL,
		ssoURL:     ssoURL,
		logger:     log.New(os.Stderr, "[garmin] ", log.LstdFlags),
		logLevel:   viper.GetString("log_level"),
	}, nil
}

// shouldLog returns true if the given log level should be logged based on the configured log level
func (c *Client) shouldLog(level string) bool {
	levels := map[string]int{
		"trace": 0,
		"debug": 1,
		"info":  2,
		"warn":  3,
		"error": 4,
	}

	configuredLevel := c.logLevel
	if configuredLevel == "" {
		configuredLevel = "info"
	}

	return levels[level] >= levels[configuredLevel]
}

// doRequest performs an HTTP request with logging. Transport-level failures
// are classified as connection errors.
func (c *Client) doRequest(req *http.Request) (*http.Response, []byte, error) {
	if c.shouldLog("debug") {
		c.logger.Printf("Request: %s %s", req.Method, req.URL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	if c.shouldLog("debug") {
		c.logger.Printf("Response: %s %s", resp.Status, req.URL)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewBuffer(respBody))

	if c.shouldLog("trace") {
		preview := string(respBody)
		if len(preview) > 512 {
			preview = preview[:512]
		}
		c.logger.Printf("Response Body Preview: %s", preview)
	}

	return resp, respBody, nil
}

// classifyStatus maps throttling and session-rejection status codes onto
// the sentinel errors. Returns nil for anything else.
func classifyStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthenticationFailed, statusCode)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, statusCode)
	}
	return nil
}

// Login performs the sign-in process against the Garmin SSO endpoint
func (c *Client) Login() error {
	csrfToken, err := c.doGetSignin()
	if err != nil {
		return fmt.Errorf("failed to get signin page: %w", err)
	}

	if err := c.doPostSignin(csrfToken); err != nil {
		return fmt.Errorf("failed to post signin: %w", err)
	}

	return nil
}

// doGetSignin retrieves the signin page and extracts the CSRF token
func (c *Client) doGetSignin() (string, error) {
	signinURL := c.ssoURL + "/signin?service=" + url.QueryEscape(c.connectURL+"/modern")

	req, err := http.NewRequest("GET", signinURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range commonHeaders {
		req.Header.Set(k, v)
	}

	resp, body, err := c.doRequest(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse signin page: %w", err)
	}

	csrfToken, ok := doc.Find(`input[name="_csrf"]`).Attr("value")
	if !ok || csrfToken == "" {
		return "", fmt.Errorf("csrf token not found on signin page")
	}

	return csrfToken, nil
}

// doPostSignin performs the sign-in POST request
func (c *Client) doPostSignin(csrfToken string) error {
	data := url.Values{}
	data.Set("username", c.username)
	data.Set("password", c.password)
	data.Set("embed", "false")
	data.Set("_csrf", csrfToken)

	signinURL := c.ssoURL + "/signin?service=" + url.QueryEscape(c.connectURL+"/modern")

	req, err := http.NewRequest("POST", signinURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range commonHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("referer", signinURL)

	resp, body, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// A successful sign-in responds with a service ticket in the response
	// URL; its absence on a 200 means the credentials were rejected.
	if resp.StatusCode == http.StatusOK && !strings.Contains(string(body), "ticket=") {
		return fmt.Errorf("%w: no service ticket in signin response", ErrAuthenticationFailed)
	}

	return nil
}

// ListActivities retrieves one page of the activity list as raw JSON.
// An empty JSON array signals that the listing is exhausted.
func (c *Client) ListActivities(start, limit int) ([]byte, error) {
	listURL := fmt.Sprintf("%s/proxy/activitylist-service/activities/search/activities?start=%d&limit=%d",
		c.connectURL, start, limit)

	req, err := http.NewRequest("GET", listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range commonHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("nk", "NT")
	req.Header.Set("x-requested-with", "XMLHttpRequest")

	resp, body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// DownloadActivityFit retrieves the original upload for an activity. The
// download service responds with either a bare FIT file or a zip archive
// wrapping one; unwrapping is the caller's concern.
func (c *Client) DownloadActivityFit(activityID int64) ([]byte, error) {
	downloadURL := fmt.Sprintf("%s/proxy/download-service/files/activity/%d", c.connectURL, activityID)

	req, err := http.NewRequest("GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range commonHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("accept", "*/*")
	req.Header.Set("nk", "NT")
	req.Header.Set("referer", c.connectURL+"/modern/activities")

	resp, body, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// PersistCookies writes the current session cookies to disk so the next
// run can skip the sign-in form.
func (c *Client) PersistCookies() error {
	return c.jar.persist()
}
