package cli

import (
	"os"
	"path/filepath"
)

// Paths locates an app's files under ~/.jm-minimax/<app>.
type Paths struct {
	AppName string
	HomeDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		AppName: appName,
		HomeDir: home,
	}, nil
}

// BaseDir returns ~/.jm-minimax.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns ~/.jm-minimax/<app>.
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns ~/.jm-minimax/<app>/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// OutputDir returns the default media output directory.
func (p *Paths) OutputDir() string {
	return filepath.Join(p.AppDir(), "output")
}

// InputDir returns the default directory for audio samples and frames.
func (p *Paths) InputDir() string {
	return filepath.Join(p.AppDir(), "input")
}

// JournalDir returns the default video task journal directory.
func (p *Paths) JournalDir() string {
	return filepath.Join(p.AppDir(), "journal")
}

// Resolve picks the configured directory, expanding a leading ~, or the
// fallback when configured is empty.
func (p *Paths) Resolve(configured, fallback string) string {
	switch {
	case configured == "":
		return fallback
	case configured == "~":
		return p.HomeDir
	case len(configured) > 1 && configured[0] == '~' && os.IsPathSeparator(configured[1]):
		return filepath.Join(p.HomeDir, configured[2:])
	}
	return configured
}

// Ensure creates dir if it doesn't exist and returns it.
func (p *Paths) Ensure(dir string) (string, error) {
	return dir, os.MkdirAll(dir, 0755)
}
