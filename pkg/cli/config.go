package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".jm-minimax"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"

	// EnvAPIKey is consulted when a context carries no API key.
	EnvAPIKey = "MINIMAX_API_KEY"
	// EnvGroupID is consulted when a context carries no group id.
	EnvGroupID = "MINIMAX_GROUP_ID"
)

// Config represents the main configuration structure for a CLI app
type Config struct {
	// AppName is the application name (e.g., "minimax-nodes")
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one named account and workspace setup.
type Context struct {
	Name string `yaml:"name"`

	APIKey  string `yaml:"api_key,omitempty"`
	GroupID string `yaml:"group_id,omitempty"`

	// BaseURL overrides the API host, e.g. https://api.minimaxi.com
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// MaxRetries and RetryDelay (seconds) control resends on transport
	// failures. Zero retries means a single attempt.
	MaxRetries int `yaml:"max_retries,omitempty"`
	RetryDelay int `yaml:"retry_delay,omitempty"`

	// DefaultVoice fills text-to-speech voice_id when a run leaves it unset.
	DefaultVoice string `yaml:"default_voice,omitempty"`

	// OutputDir receives generated media; InputDir resolves relative
	// sample and frame paths. Both default to directories under the app dir.
	OutputDir string `yaml:"output_dir,omitempty"`
	InputDir  string `yaml:"input_dir,omitempty"`

	// JournalDir holds the on-disk video task journal.
	JournalDir string `yaml:"journal_dir,omitempty"`

	// PollInterval and MaxWait (seconds) are wait-video defaults.
	PollInterval int `yaml:"poll_interval,omitempty"`
	MaxWait      int `yaml:"max_wait,omitempty"`

	// S3 mirrors every generated file to a bucket when set.
	S3 *storage.S3Config `yaml:"s3,omitempty"`
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			ctx = &Context{}
			cfg.Contexts[name] = ctx
		}
		ctx.Name = name
	}

	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds or replaces a context.
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// GetCurrentContext returns the current context
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}
	return c.GetContext(c.CurrentContext)
}

// ResolveContext returns the named context, the current one when name is
// empty, or a blank context that relies on the environment when neither
// exists. A name that does not exist is always an error.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{}, nil
	}
	return c.GetCurrentContext()
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Credentials returns the API key and group id, falling back to
// MINIMAX_API_KEY and MINIMAX_GROUP_ID.
func (ctx *Context) Credentials() (apiKey, groupID string) {
	apiKey, groupID = ctx.APIKey, ctx.GroupID
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if groupID == "" {
		groupID = os.Getenv(EnvGroupID)
	}
	return apiKey, groupID
}

// ClientOptions converts the transport settings into client options.
func (ctx *Context) ClientOptions() []minimax.Option {
	var opts []minimax.Option
	if ctx.BaseURL != "" {
		opts = append(opts, minimax.WithBaseURL(strings.TrimRight(ctx.BaseURL, "/")))
	}
	if ctx.Timeout > 0 {
		opts = append(opts, minimax.WithTimeout(time.Duration(ctx.Timeout)*time.Second))
	}
	if ctx.MaxRetries > 0 {
		delay := minimax.DefaultRetryDelay
		if ctx.RetryDelay > 0 {
			delay = time.Duration(ctx.RetryDelay) * time.Second
		}
		opts = append(opts, minimax.WithRetry(ctx.MaxRetries, delay))
	}
	return opts
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
