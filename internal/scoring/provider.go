package scoring

import (
	"sync/atomic"

	"leadqual_backend/platform/logger"
)

// Provider holds the active scoring configuration and supports hot reload
// between computations. Readers always see a complete, normalized config;
// swaps are atomic so an in-flight Compute keeps the snapshot it started
// with.
type Provider struct {
	path    string
	log     *logger.Logger
	current atomic.Pointer[Config]
}

// NewProvider loads the configuration from path (falling back to defaults
// when the file is absent) and returns a provider serving it.
func NewProvider(path string, log *logger.Logger) (*Provider, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	p := &Provider{path: path, log: log}
	p.current.Store(cfg)
	return p, nil
}

// Current returns the active configuration. The returned pointer must be
// treated as immutable.
func (p *Provider) Current() *Config {
	return p.current.Load()
}

// Reload re-reads the configuration file and swaps it in. On failure the
// previous configuration stays active.
func (p *Provider) Reload() error {
	cfg, err := LoadFile(p.path)
	if p.log != nil {
		p.log.ConfigReload(p.path, err)
	}
	if err != nil {
		return err
	}

	p.current.Store(cfg)
	return nil
}

// Update replaces the active configuration with an administrator-supplied
// one, normalizing it first.
func (p *Provider) Update(cfg Config) {
	cfg.Normalize()
	p.current.Store(&cfg)
	if p.log != nil {
		p.log.ConfigReload("admin", nil)
	}
}
