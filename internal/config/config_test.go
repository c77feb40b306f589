package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults_FillsEverything(t *testing.T) {
	t.Parallel()

	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Source.PollIntervalSec != DefaultPollIntervalSec {
		t.Fatalf("poll_interval_sec=%d", cfg.Source.PollIntervalSec)
	}
	if cfg.Viewport.Width != DefaultWidth || cfg.Viewport.Height != DefaultHeight {
		t.Fatalf("viewport=%+v", cfg.Viewport)
	}
	if cfg.Viewport.FPS != DefaultFPS {
		t.Fatalf("fps=%d", cfg.Viewport.FPS)
	}
	if cfg.Layout.Damping != DefaultDamping {
		t.Fatalf("damping=%v", cfg.Layout.Damping)
	}
	if cfg.Layout.SelfRadius <= cfg.Layout.PeerRadius {
		t.Fatalf("self_radius=%v peer_radius=%v", cfg.Layout.SelfRadius, cfg.Layout.PeerRadius)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.Layout.Repulsion = 500
	cfg.Viewport.Width = 640
	ApplyDefaults(&cfg)

	if cfg.Layout.Repulsion != 500 {
		t.Fatalf("repulsion=%v", cfg.Layout.Repulsion)
	}
	if cfg.Viewport.Width != 640 {
		t.Fatalf("width=%v", cfg.Viewport.Width)
	}
}

func TestValidate_RejectsBadRanges(t *testing.T) {
	t.Parallel()

	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Layout.Damping = 1.5
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error")
	}

	cfg.Layout.Damping = DefaultDamping
	cfg.Viewport.FPS = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestSave_Writes0600AndRoundTrips(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "peermap.yaml")

	cfg := Config{}
	cfg.Source.URL = "http://127.0.0.1:4021"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode=%o", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Source.URL != "http://127.0.0.1:4021" {
		t.Fatalf("url=%q", loaded.Source.URL)
	}
	if loaded.Viewport.Width != DefaultWidth {
		t.Fatalf("width=%v", loaded.Viewport.Width)
	}
}
