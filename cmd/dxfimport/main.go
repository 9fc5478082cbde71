// Command dxfimport parses a DXF drawing and runs it through the import
// core, emitting renderer-ready JSON or a human-readable summary.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvid-cad/dxfimport/cmd/dxfimport/internal/ui"
	"github.com/corvid-cad/dxfimport/dxfconfig"
	"github.com/corvid-cad/dxfimport/dxfcore"
	"github.com/corvid-cad/dxfimport/dxfparse"
)

const version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "dxfimport",
		Short:        "Import DXF drawings into renderer-ready shapes",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dxfimport version",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHeader(version)
		},
	}
}

type commonFlags struct {
	configPath  string
	floorID     string
	layerID     string
	colorScheme string
	customHex   string
	units       string
	paperSpace  bool
	readOnly    bool
	theme       string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a .dxfimport.toml config file")
	cmd.Flags().StringVar(&f.floorID, "floor-id", "", "floor ID to stamp onto emitted shapes")
	cmd.Flags().StringVar(&f.layerID, "default-layer", "", "layer ID used for entities whose layer is not in the layer table")
	cmd.Flags().StringVar(&f.colorScheme, "color-scheme", "", "original|grayscale|monochrome|fixedGray153|custom")
	cmd.Flags().StringVar(&f.customHex, "custom-color", "", "hex color used when --color-scheme=custom")
	cmd.Flags().StringVar(&f.units, "units", "", "auto|meters|cm|mm|feet|inches")
	cmd.Flags().BoolVar(&f.paperSpace, "paper-space", false, "include paper-space entities")
	cmd.Flags().BoolVar(&f.readOnly, "read-only", false, "mark imported layers read-only")
	cmd.Flags().StringVar(&f.theme, "theme", "dark", "dark|light (affects ACI index-7 color)")
}

func (f *commonFlags) loadConfig() (*dxfconfig.Config, error) {
	overrides := &dxfconfig.Config{Import: dxfconfig.ImportSection{
		FloorID:           f.floorID,
		DefaultLayerID:    f.layerID,
		ColorScheme:       f.colorScheme,
		CustomColorHex:    f.customHex,
		SourceUnits:       f.units,
		IncludePaperSpace: f.paperSpace,
		ReadOnly:          f.readOnly,
	}}

	if f.configPath != "" {
		cfg, err := dxfconfig.LoadFile(f.configPath)
		if err != nil {
			return nil, err
		}
		applyFlagOverrides(cfg, overrides)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return dxfconfig.Load(overrides)
}

func applyFlagOverrides(cfg, overrides *dxfconfig.Config) {
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

func (f *commonFlags) theming() dxfcore.Theme {
	if f.theme == "light" {
		return dxfcore.ThemeLight
	}
	return dxfcore.ThemeDark
}

func runImport(path string, f *commonFlags) (dxfcore.Result, []dxfcore.Diagnostic, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dxfcore.Result{}, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data, err := dxfparse.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return dxfcore.Result{}, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg, err := f.loadConfig()
	if err != nil {
		return dxfcore.Result{}, nil, fmt.Errorf("loading config: %w", err)
	}

	return dxfcore.Import(string(raw), data, cfg.ImportOptions(), f.theming())
}

func importCmd() *cobra.Command {
	var (
		flags  commonFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "import [dxf-file]",
		Short: "Import a DXF file and print renderer-ready JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			result, diagnostics, err := runImport(args[0], &flags)
			if err != nil {
				ui.PrintError(err.Error())
				return err
			}

			payload := struct {
				Result      dxfcore.Result       `json:"result"`
				Diagnostics []dxfcore.Diagnostic `json:"diagnostics"`
			}{result, diagnostics}

			encoded, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				ui.PrintError(err.Error())
				return err
			}

			if output == "" {
				fmt.Println(string(encoded))
			} else if err := os.WriteFile(output, encoded, 0644); err != nil {
				ui.PrintError(err.Error())
				return err
			}

			for _, d := range diagnostics {
				ui.PrintDiagnostic(string(d.Kind), d.Message)
			}
			ui.PrintSuccess(fmt.Sprintf("imported %d shapes across %d layers", len(result.Shapes), len(result.Layers)), time.Since(start))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	return cmd
}

func statsCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "stats [dxf-file]",
		Short: "Import a DXF file and print a human-readable summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			result, diagnostics, err := runImport(args[0], &flags)
			if err != nil {
				ui.PrintError(err.Error())
				return err
			}

			ui.PrintHeader(version)
			ui.PrintSection("Summary")
			fmt.Println(ui.Table([][2]string{
				{"File", args[0]},
				{"Shapes", fmt.Sprintf("%d", len(result.Shapes))},
				{"Layers", fmt.Sprintf("%d", len(result.Layers))},
				{"Width", fmt.Sprintf("%.3f", result.Width)},
				{"Height", fmt.Sprintf("%.3f", result.Height)},
				{"Origin", fmt.Sprintf("(%.3f, %.3f)", result.Origin.X, result.Origin.Y)},
			}))

			counts := map[dxfcore.ShapeType]int{}
			for _, s := range result.Shapes {
				counts[s.Type]++
			}
			ui.PrintSection("Shape breakdown")
			var breakdown [][2]string
			for _, t := range []dxfcore.ShapeType{
				dxfcore.ShapeLine, dxfcore.ShapePolyline, dxfcore.ShapeCircle,
				dxfcore.ShapeText, dxfcore.ShapeArrow, dxfcore.ShapeRect,
			} {
				if counts[t] > 0 {
					breakdown = append(breakdown, [2]string{string(t), fmt.Sprintf("%d", counts[t])})
				}
			}
			fmt.Println(ui.Table(breakdown))

			if len(diagnostics) > 0 {
				ui.PrintSection("Diagnostics")
				for _, d := range diagnostics {
					ui.PrintDiagnostic(string(d.Kind), d.Message)
				}
			}

			ui.PrintSuccess("done", time.Since(start))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
