// Package config holds the read-only settings for one trace session.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrInvalidWidth        = errors.New("display width must be at least 20 columns")
	ErrQuietWithoutCapture = errors.New("quiet mode needs a capture file")
)

// MinWidth is the narrowest display the INP3 layout can wrap into.
const MinWidth = 20

// FilterConfig restricts which reports are shown. An empty string, or
// a zero port, leaves that filter unset.
type FilterConfig struct {
	Reporter    string `mapstructure:"reporter"`
	Port        int    `mapstructure:"port"`
	Source      string `mapstructure:"from"`
	Destination string `mapstructure:"to"`
	Either      string `mapstructure:"all"`
	Protocol    string `mapstructure:"protocol"`
	FrameType   string `mapstructure:"type"`
}

// Active reports whether any filter is set.
func (f FilterConfig) Active() bool {
	return f.Reporter != "" || f.Port != 0 || f.Source != "" || f.Destination != "" ||
		f.Either != "" || f.Protocol != "" || f.FrameType != ""
}

// DisplayConfig selects what is decoded and how it is laid out.
type DisplayConfig struct {
	ShowUI      bool `mapstructure:"ui"`
	NetRom      bool `mapstructure:"netrom"`
	L4          bool `mapstructure:"l4"`
	Nodes       bool `mapstructure:"nodes"`
	INP3        bool `mapstructure:"inp3"`
	L3RTT       bool `mapstructure:"l3rtt"`
	Color       bool `mapstructure:"color"`
	ColorToFile bool `mapstructure:"color_file"`
	HeaderLine  bool `mapstructure:"header_line"`
	RawJSON     bool `mapstructure:"json"`
	BlankLine   bool `mapstructure:"blank_line"`
	Timestamp   bool `mapstructure:"timestamp"`
	Quiet       bool `mapstructure:"quiet"`
	Warnings    bool `mapstructure:"warnings"`

	// LegacySearch decodes with the order-dependent textual field
	// search instead of the scoped object index.
	LegacySearch bool `mapstructure:"legacy_search"`

	Width int `mapstructure:"width"`
}

// Config is everything a session needs.
type Config struct {
	Filter  FilterConfig  `mapstructure:"filter"`
	Display DisplayConfig `mapstructure:"display"`

	Input       string `mapstructure:"input"`
	CaptureFile string `mapstructure:"output"`
	ReportFile  string `mapstructure:"report"`
	TUI         bool   `mapstructure:"tui"`
	LogLevel    string `mapstructure:"log_level"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			ShowUI:    true,
			NetRom:    true,
			L4:        true,
			Nodes:     true,
			INP3:      true,
			L3RTT:     true,
			Color:     true,
			BlankLine: true,
			Timestamp: true,
			Width:     80,
		},
		Input:    "-",
		LogLevel: "info",
	}
}

// SetDefaults registers DefaultConfig with v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Every key needs a default for AutomaticEnv to reach it on
	// Unmarshal.
	v.SetDefault("filter.reporter", d.Filter.Reporter)
	v.SetDefault("filter.port", d.Filter.Port)
	v.SetDefault("filter.from", d.Filter.Source)
	v.SetDefault("filter.to", d.Filter.Destination)
	v.SetDefault("filter.all", d.Filter.Either)
	v.SetDefault("filter.protocol", d.Filter.Protocol)
	v.SetDefault("filter.type", d.Filter.FrameType)

	v.SetDefault("display.ui", d.Display.ShowUI)
	v.SetDefault("display.netrom", d.Display.NetRom)
	v.SetDefault("display.l4", d.Display.L4)
	v.SetDefault("display.nodes", d.Display.Nodes)
	v.SetDefault("display.inp3", d.Display.INP3)
	v.SetDefault("display.l3rtt", d.Display.L3RTT)
	v.SetDefault("display.color", d.Display.Color)
	v.SetDefault("display.color_file", d.Display.ColorToFile)
	v.SetDefault("display.header_line", d.Display.HeaderLine)
	v.SetDefault("display.json", d.Display.RawJSON)
	v.SetDefault("display.blank_line", d.Display.BlankLine)
	v.SetDefault("display.timestamp", d.Display.Timestamp)
	v.SetDefault("display.quiet", d.Display.Quiet)
	v.SetDefault("display.warnings", d.Display.Warnings)
	v.SetDefault("display.legacy_search", d.Display.LegacySearch)
	v.SetDefault("display.width", d.Display.Width)
	v.SetDefault("input", d.Input)
	v.SetDefault("output", d.CaptureFile)
	v.SetDefault("report", d.ReportFile)
	v.SetDefault("tui", d.TUI)
	v.SetDefault("log_level", d.LogLevel)
}

// Load reads the merged flag, environment and file settings from v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot produce a usable trace.
func (c Config) Validate() error {
	if c.Display.Width < MinWidth {
		return fmt.Errorf("%w: got %d", ErrInvalidWidth, c.Display.Width)
	}
	if c.Display.Quiet && c.CaptureFile == "" {
		return ErrQuietWithoutCapture
	}
	return nil
}

// EnvPrefix namespaces the environment variables, e.g.
// PNMPTRACE_DISPLAY_WIDTH for display.width.
const EnvPrefix = "PNMPTRACE"

// BindEnv makes every key readable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
