package minimax

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the default MiniMax API base URL.
	DefaultBaseURL = "https://api.minimaxi.chat"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryDelay is the fixed delay between transport retries.
	DefaultRetryDelay = 2 * time.Second
)

// Client is the MiniMax API client.
//
// A Client holds its own configuration; nothing is shared between clients,
// so tests can point one at a fake endpoint with WithBaseURL.
type Client struct {
	// Speech provides speech synthesis operations.
	Speech *SpeechService

	// Voice provides voice cloning and design operations.
	Voice *VoiceService

	// Video provides video generation and status operations.
	Video *VideoService

	// Music provides music generation operations.
	Music *MusicService

	// File provides file retrieval operations.
	File *FileService

	config *clientConfig
	http   *httpClient
}

// clientConfig holds the client configuration.
type clientConfig struct {
	apiKey     string
	groupID    string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option is a function that configures the client.
type Option func(*clientConfig)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithGroupID sets the account group id sent as the GroupId query parameter.
func WithGroupID(groupID string) Option {
	return func(c *clientConfig) {
		c.groupID = groupID
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithRetry retries transport failures up to maxRetries times, sleeping
// delay between attempts. API business errors are never retried.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

// WithLogger sets the logger used for request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// NewClient creates a new MiniMax API client.
//
// The apiKey is passed through as a bearer token.
//
// Example:
//
//	client := minimax.NewClient("your-api-key")
//	client := minimax.NewClient("your-api-key", minimax.WithGroupID("123"))
func NewClient(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		retryDelay: DefaultRetryDelay,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	c := &Client{
		config: cfg,
		http:   newHTTPClient(cfg),
	}

	c.Speech = newSpeechService(c)
	c.Voice = newVoiceService(c)
	c.Video = newVideoService(c)
	c.Music = newMusicService(c)
	c.File = newFileService(c)

	return c
}

// APIKey returns the configured API key.
func (c *Client) APIKey() string {
	return c.config.apiKey
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.baseURL
}

// GroupID returns the configured group id.
func (c *Client) GroupID() string {
	return c.config.groupID
}
