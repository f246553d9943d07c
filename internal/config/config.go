// Package config loads memo settings from a YAML profile.
//
//	ttl: 1500ms
//	mode: coalesce
//	sliding: false
//	forget_failures: true
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gomemo/internal/memo"
)

// Profile is the on-disk form of a memo.Config.
type Profile struct {
	TTL            Duration `yaml:"ttl"`
	Mode           string   `yaml:"mode"`
	Sliding        bool     `yaml:"sliding"`
	ForgetFailures bool     `yaml:"forget_failures"`
}

// Duration accepts Go duration strings ("2s", "1500ms") or a bare integer
// meaning milliseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var ms int64
	if err := node.Decode(&ms); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// Load reads the profile at path. A missing file yields a zero Profile.
func Load(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := ParseMode(p.Mode); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	return p, nil
}

// ParseMode maps "sync" and "coalesce" to memo modes. Empty means sync.
func ParseMode(s string) (memo.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sync", "synchronous":
		return memo.Synchronous, nil
	case "coalesce", "coalescing", "async":
		return memo.Coalescing, nil
	default:
		return memo.Synchronous, fmt.Errorf("unknown mode %q", s)
	}
}

// MemoConfig converts the profile. Mode was validated by Load.
func (p Profile) MemoConfig() memo.Config {
	mode, _ := ParseMode(p.Mode)
	return memo.Config{
		TTL:            time.Duration(p.TTL),
		Mode:           mode,
		Sliding:        p.Sliding,
		ForgetFailures: p.ForgetFailures,
	}
}
