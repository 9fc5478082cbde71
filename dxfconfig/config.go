// Package dxfconfig loads default [dxfcore.ImportOptions] from a TOML file,
// layered over built-in defaults the way a project's dingo.toml overrides
// compiler feature flags.
package dxfconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/corvid-cad/dxfimport/dxfcore"
)

// Config is the on-disk shape of a .dxfimport.toml file.
type Config struct {
	Import ImportSection `toml:"import"`
}

// ImportSection mirrors [dxfcore.ImportOptions] field-for-field, using
// plain strings for the enum-like fields so a TOML author doesn't need Go
// import paths.
type ImportSection struct {
	FloorID           string `toml:"floor_id"`
	DefaultLayerID    string `toml:"default_layer_id"`
	ColorScheme       string `toml:"color_scheme"`
	CustomColorHex    string `toml:"custom_color_hex"`
	SourceUnits       string `toml:"source_units"`
	IncludePaperSpace bool   `toml:"include_paper_space"`
	ReadOnly          bool   `toml:"read_only"`
	ExplodeBlocks     bool   `toml:"explode_blocks"`
}

// DefaultConfig returns the built-in defaults: original colors, auto unit
// detection, paper space excluded.
func DefaultConfig() *Config {
	return &Config{
		Import: ImportSection{
			DefaultLayerID: "default",
			ColorScheme:    string(dxfcore.ColorSchemeOriginal),
			SourceUnits:    string(dxfcore.UnitsAuto),
			ExplodeBlocks:  true,
		},
	}
}

// Load reads ~/.dxfimport/config.toml then ./.dxfimport.toml, each
// overriding the previous, on top of [DefaultConfig]. Missing files are
// not an error. overrides, if non-nil, wins over both.
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userPath := filepath.Join(os.Getenv("HOME"), ".dxfimport", "config.toml")
	if err := loadFile(userPath, cfg); err != nil {
		return nil, fmt.Errorf("dxfconfig: loading user config: %w", err)
	}

	if err := loadFile(".dxfimport.toml", cfg); err != nil {
		return nil, fmt.Errorf("dxfconfig: loading project config: %w", err)
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dxfconfig: invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile loads a single TOML file over the built-in defaults, ignoring
// the user/project search path. Used by the CLI's --config flag.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFile(path, cfg); err != nil {
		return nil, fmt.Errorf("dxfconfig: loading %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dxfconfig: invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func applyOverrides(cfg *Config, overrides *Config) {
	if overrides.Import.FloorID != "" {
		cfg.Import.FloorID = overrides.Import.FloorID
	}
	if overrides.Import.DefaultLayerID != "" {
		cfg.Import.DefaultLayerID = overrides.Import.DefaultLayerID
	}
	if overrides.Import.ColorScheme != "" {
		cfg.Import.ColorScheme = overrides.Import.ColorScheme
	}
	if overrides.Import.CustomColorHex != "" {
		cfg.Import.CustomColorHex = overrides.Import.CustomColorHex
	}
	if overrides.Import.SourceUnits != "" {
		cfg.Import.SourceUnits = overrides.Import.SourceUnits
	}
	if overrides.Import.IncludePaperSpace {
		cfg.Import.IncludePaperSpace = true
	}
	if overrides.Import.ReadOnly {
		cfg.Import.ReadOnly = true
	}
}

// Validate checks that the enum-like string fields carry a recognized
// value.
func (c *Config) Validate() error {
	switch dxfcore.ColorScheme(c.Import.ColorScheme) {
	case dxfcore.ColorSchemeOriginal, dxfcore.ColorSchemeGrayscale, dxfcore.ColorSchemeMonochrome,
		dxfcore.ColorSchemeFixedGray153, dxfcore.ColorSchemeCustom:
	default:
		return fmt.Errorf("invalid color_scheme: %q", c.Import.ColorScheme)
	}

	switch dxfcore.SourceUnits(c.Import.SourceUnits) {
	case dxfcore.UnitsAuto, dxfcore.UnitsMeters, dxfcore.UnitsCm, dxfcore.UnitsMm, dxfcore.UnitsFeet, dxfcore.UnitsInches:
	default:
		return fmt.Errorf("invalid source_units: %q", c.Import.SourceUnits)
	}

	return nil
}

// ImportOptions converts the loaded config into the type [dxfcore.Import]
// consumes.
func (c *Config) ImportOptions() dxfcore.ImportOptions {
	return dxfcore.ImportOptions{
		FloorID:           c.Import.FloorID,
		DefaultLayerID:    c.Import.DefaultLayerID,
		ColorScheme:       dxfcore.ColorScheme(c.Import.ColorScheme),
		CustomColorHex:    c.Import.CustomColorHex,
		SourceUnits:       dxfcore.SourceUnits(c.Import.SourceUnits),
		IncludePaperSpace: c.Import.IncludePaperSpace,
		ReadOnly:          c.Import.ReadOnly,
		ExplodeBlocks:     c.Import.ExplodeBlocks,
	}
}
