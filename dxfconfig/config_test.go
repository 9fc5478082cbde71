package dxfconfig

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadFile("does-not-exist.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Import.SourceUnits != "auto" {
		t.Errorf("expected default source_units 'auto', got %q", cfg.Import.SourceUnits)
	}
}

func TestValidateRejectsUnknownColorScheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Import.ColorScheme = "sepia"
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected an unknown color_scheme to fail validation")
	}
}

func TestImportOptionsConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Import.FloorID = "floor-1"
	opts := cfg.ImportOptions()
	if opts.FloorID != "floor-1" {
		t.Errorf("expected FloorID to carry over, got %q", opts.FloorID)
	}
	if opts.DefaultLayerID != "default" {
		t.Errorf("expected default layer id, got %q", opts.DefaultLayerID)
	}
}
