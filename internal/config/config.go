package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPollIntervalSec = 3
	DefaultWidth           = 1280.0
	DefaultHeight          = 800.0
	DefaultFPS             = 30

	DefaultSpringLength = 120.0
	DefaultSpringK      = 0.02
	DefaultRepulsion    = 3000.0
	DefaultDamping      = 0.85
	DefaultLabelMargin  = 8.0
	DefaultPadding      = 24.0
	DefaultAlphaMin     = 0.005
	DefaultAlphaDecay   = 0.02
	DefaultAlphaNudge   = 0.1
	DefaultSelfRadius   = 26.0
	DefaultPeerRadius   = 18.0
	DefaultEdgeSpacing  = 10.0
)

// Config holds snapshot source, viewport and layout settings.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Viewport ViewportConfig `yaml:"viewport"`
	Layout   LayoutConfig   `yaml:"layout"`
}

// SourceConfig says where snapshots come from.
type SourceConfig struct {
	URL             string `yaml:"url"`
	StreamURL       string `yaml:"stream_url,omitempty"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`
}

// ViewportConfig sizes the layout area and paces the tick loop.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	FPS    int     `yaml:"fps"`
}

// LayoutConfig carries the force simulation tunables.
type LayoutConfig struct {
	SpringLength float64 `yaml:"spring_length"`
	SpringK      float64 `yaml:"spring_k"`
	Repulsion    float64 `yaml:"repulsion"`
	Damping      float64 `yaml:"damping"`
	LabelMargin  float64 `yaml:"label_margin"`
	Padding      float64 `yaml:"padding"`
	AlphaMin     float64 `yaml:"alpha_min"`
	AlphaDecay   float64 `yaml:"alpha_decay"`
	AlphaNudge   float64 `yaml:"alpha_nudge"`
	SelfRadius   float64 `yaml:"self_radius"`
	PeerRadius   float64 `yaml:"peer_radius"`
	EdgeSpacing  float64 `yaml:"edge_spacing"`
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// Save writes a YAML config file to disk.
func Save(path string, cfg Config) error {
	ApplyDefaults(&cfg)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate performs minimal validation of the simulation ranges.
func Validate(cfg Config) error {
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		return fmt.Errorf("viewport dimensions must be positive")
	}
	if cfg.Viewport.FPS <= 0 {
		return fmt.Errorf("viewport.fps must be positive")
	}
	if cfg.Layout.Damping <= 0 || cfg.Layout.Damping >= 1 {
		return fmt.Errorf("layout.damping must be between 0 and 1")
	}
	if cfg.Layout.AlphaDecay <= 0 || cfg.Layout.AlphaDecay >= 1 {
		return fmt.Errorf("layout.alpha_decay must be between 0 and 1")
	}
	if cfg.Source.PollIntervalSec < 0 {
		return fmt.Errorf("source.poll_interval_sec must not be negative")
	}
	return nil
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Source.PollIntervalSec == 0 {
		cfg.Source.PollIntervalSec = DefaultPollIntervalSec
	}

	if cfg.Viewport.Width == 0 {
		cfg.Viewport.Width = DefaultWidth
	}
	if cfg.Viewport.Height == 0 {
		cfg.Viewport.Height = DefaultHeight
	}
	if cfg.Viewport.FPS == 0 {
		cfg.Viewport.FPS = DefaultFPS
	}

	l := &cfg.Layout
	if l.SpringLength == 0 {
		l.SpringLength = DefaultSpringLength
	}
	if l.SpringK == 0 {
		l.SpringK = DefaultSpringK
	}
	if l.Repulsion == 0 {
		l.Repulsion = DefaultRepulsion
	}
	if l.Damping == 0 {
		l.Damping = DefaultDamping
	}
	if l.LabelMargin == 0 {
		l.LabelMargin = DefaultLabelMargin
	}
	if l.Padding == 0 {
		l.Padding = DefaultPadding
	}
	if l.AlphaMin == 0 {
		l.AlphaMin = DefaultAlphaMin
	}
	if l.AlphaDecay == 0 {
		l.AlphaDecay = DefaultAlphaDecay
	}
	if l.AlphaNudge == 0 {
		l.AlphaNudge = DefaultAlphaNudge
	}
	if l.SelfRadius == 0 {
		l.SelfRadius = DefaultSelfRadius
	}
	if l.PeerRadius == 0 {
		l.PeerRadius = DefaultPeerRadius
	}
	if l.EdgeSpacing == 0 {
		l.EdgeSpacing = DefaultEdgeSpacing
	}
}
