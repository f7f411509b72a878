package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// RemoteConfig holds configuration for the remote library service.
type RemoteConfig struct {
	// URL is the library endpoint.
	URL string `mapstructure:"url" default:""`
	// Token is the API token. An empty token means sync is not configured.
	Token string `mapstructure:"token" default:""`
	// TokenFile is an optional file the token is read from instead.
	TokenFile string `mapstructure:"token_file" default:""`
	// TimeoutSeconds is the request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// CredentialProvider supplies the API token for the remote service.
// A missing token is a normal condition (sync not configured), not an error.
type CredentialProvider interface {
	Token() (string, bool)
}

// ConfigCredentials reads the token from the remote configuration, preferring
// the literal value over the token file.
type ConfigCredentials struct {
	cfg RemoteConfig
}

// NewConfigCredentials builds a provider over the remote configuration.
func NewConfigCredentials(cfg RemoteConfig) *ConfigCredentials {
	return &ConfigCredentials{cfg: cfg}
}

func (p *ConfigCredentials) Token() (string, bool) {
	if p.cfg.Token != "" {
		return p.cfg.Token, true
	}
	if p.cfg.TokenFile != "" {
		data, err := os.ReadFile(p.cfg.TokenFile)
		if err == nil {
			if token := strings.TrimSpace(string(data)); token != "" {
				return token, true
			}
		}
	}
	return "", false
}

// Remote is the transport to the remote library service.
type Remote interface {
	// Upload POSTs the outbound batch.
	Upload(ctx context.Context, token string, entries []LibraryEntry) error
	// Fetch retrieves remote entries changed since the checkpoint; since=0
	// fetches the whole remote library.
	Fetch(ctx context.Context, token string, since int64) ([]RemoteEntry, error)
	// Delete asks the remote side to remove the given entries and returns the
	// server response verbatim.
	Delete(ctx context.Context, token string, entries []LibraryEntry) (json.RawMessage, error)
}

// Client implements Remote over HTTP.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a remote library client from the configuration.
func NewClient(cfg RemoteConfig) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Strict transport timeouts; the sync engine imposes none of its own.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &Client{
		url: cfg.URL,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
	}
}

func (c *Client) Upload(ctx context.Context, token string, entries []LibraryEntry) error {
	_, err := c.do(ctx, http.MethodPost, c.url, token, entries)
	return err
}

func (c *Client) Fetch(ctx context.Context, token string, since int64) ([]RemoteEntry, error) {
	url := c.url
	if since > 0 {
		url += "?since=" + strconv.FormatInt(since, 10)
	}
	body, err := c.do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return nil, err
	}
	var entries []RemoteEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode remote library: %w", err)
	}
	return entries, nil
}

func (c *Client) Delete(ctx context.Context, token string, entries []LibraryEntry) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodDelete, c.url, token, entries)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, method, url, token string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, c.url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s returned status %d", method, c.url, resp.StatusCode)
	}
	return data, nil
}
