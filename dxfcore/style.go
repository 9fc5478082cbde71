package dxfcore

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Theme selects the default color used when ACI index 7 (white/black) is
// resolved with no stronger signal available.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

var upper = cases.Upper(language.Und)

func (t Theme) defaultHex() string {
	if t == ThemeLight {
		return "#000000"
	}
	return "#FFFFFF"
}

// builtinLinetypes is the fallback dash table consulted when a linetype
// name is not present in the parsed ltype table, per spec §4.3.
var builtinLinetypes = map[string][]float64{
	"DASHED":     {10, 5},
	"HIDDEN":     {5, 5},
	"CENTER":     {20, 5, 5, 5},
	"PHANTOM":    {20, 5, 5, 5, 5, 5},
	"DOT":        {2, 2},
	"CONTINUOUS": {},
}

// lineweightTable maps the standard DXF lineweight enum (hundredths of a
// millimeter) to a display pixel thickness, per spec §4.3.
var lineweightTable = map[int]float64{
	0:   1.0,
	5:   1.0,
	9:   1.0,
	13:  1.25,
	15:  1.25,
	18:  1.25,
	20:  1.5,
	25:  1.5,
	30:  2.0,
	35:  2.0,
	40:  2.5,
	50:  3.0,
	53:  3.0,
	60:  3.5,
	70:  4.0,
	80:  4.5,
	90:  5.0,
	100: 5.5,
	106: 6.0,
	120: 6.5,
	140: 7.5,
	158: 8.5,
	200: 10.0,
}

const defaultLineweight = 1.0

// StyleResolver resolves color, lineweight and linetype for DXF entities,
// consulting the layer/linetype tables and an optional parent (ByBlock)
// context.
type StyleResolver struct {
	data  *DxfData
	opts  ImportOptions
	theme Theme
}

// NewStyleResolver builds a resolver bound to a single import's tables and
// options.
func NewStyleResolver(data *DxfData, opts ImportOptions, theme Theme) *StyleResolver {
	return &StyleResolver{data: data, opts: opts, theme: theme}
}

// ParentContext carries the enclosing INSERT's resolved color/dash so
// ByBlock-tagged children can inherit it. A nil ParentContext (as used
// while building a block's cached shape list) means no inheritance is
// available: ByBlock color becomes the [ByBlockPlaceholder] sentinel and
// ByBlock linetype collapses to CONTINUOUS, per the resolved open question
// in SPEC_FULL.md.
type ParentContext struct {
	Color string
	Dash  []float64
}

// ResolvedStyle is the Style Resolver's output for one entity.
type ResolvedStyle struct {
	StrokeColor string
	StrokeWidth float64
	StrokeDash  []float64
}

// Resolve computes color, lineweight and dash for e, given its layer (may
// be nil) and optional parent context.
func (r *StyleResolver) Resolve(e *Entity, layer *LayerDef, parent *ParentContext) ResolvedStyle {
	return ResolvedStyle{
		StrokeColor: r.applyColorScheme(r.resolveColor(e, layer, parent)),
		StrokeWidth: r.resolveLineweight(e, layer),
		StrokeDash:  r.resolveDash(e, layer, parent),
	}
}

// resolveColor implements the precedence chain in spec §4.3.
func (r *StyleResolver) resolveColor(e *Entity, layer *LayerDef, parent *ParentContext) string {
	if e.TrueColor != nil {
		return formatHex(*e.TrueColor)
	}

	if !e.HasColor || e.Color == ColorByLayer {
		return r.layerColor(layer)
	}

	if e.Color == ColorByBlock {
		if parent != nil {
			return parent.Color
		}
		return ByBlockPlaceholder
	}

	return r.aciToHex(e.Color)
}

func (r *StyleResolver) layerColor(layer *LayerDef) string {
	if layer == nil {
		return r.theme.defaultHex()
	}
	if layer.TrueColor != nil {
		return formatHex(*layer.TrueColor)
	}
	if layer.HasColor {
		return r.aciToHex(layer.Color)
	}
	return r.theme.defaultHex()
}

func (r *StyleResolver) aciToHex(index int) string {
	if index == 7 {
		return r.theme.defaultHex()
	}
	rgb, ok := aciColor(index)
	if !ok {
		return r.aciToHex(7)
	}
	return formatHex(rgb)
}

func formatHex(rgb uint32) string {
	return upper.String(fmt.Sprintf("#%06x", rgb&0xFFFFFF))
}

// applyColorScheme implements the post-processing modes from spec §6;
// placeholders and "transparent" pass through unchanged.
func (r *StyleResolver) applyColorScheme(hex string) string {
	if hex == ByBlockPlaceholder || hex == Transparent {
		return hex
	}
	switch r.opts.ColorScheme {
	case ColorSchemeGrayscale:
		return grayscale(hex)
	case ColorSchemeMonochrome:
		return "#000000"
	case ColorSchemeFixedGray153:
		return "#999999"
	case ColorSchemeCustom:
		if isHexColor(r.opts.CustomColorHex) {
			return upper.String(r.opts.CustomColorHex)
		}
		return hex
	default:
		return hex
	}
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// grayscale applies the luminance formula from spec §4.3.
func grayscale(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	y := uint8(math.Round(clamp(0.299*float64(r)+0.587*float64(g)+0.114*float64(b), 0, 255)))
	return formatHex(packRGB(y, y, y))
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	if !isHexColor(hex) {
		return 0, 0, 0, false
	}
	var v uint32
	_, err := fmt.Sscanf(strings.ToUpper(hex[1:]), "%06X", &v)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// resolveLineweight implements spec §4.3's lineweight precedence.
func (r *StyleResolver) resolveLineweight(e *Entity, layer *LayerDef) float64 {
	switch e.Lineweight {
	case LineweightDefault, 0:
		if e.Lineweight == LineweightDefault {
			return defaultLineweight
		}
	case LineweightByLayer:
		if layer != nil {
			return r.resolveLineweight(&Entity{Lineweight: layer.Lineweight}, nil)
		}
		return defaultLineweight
	}
	if px, ok := lineweightTable[e.Lineweight]; ok {
		return px
	}
	return defaultLineweight
}

// resolveDash implements spec §4.3's linetype precedence, scaled by
// $LTSCALE * entity.lineTypeScale.
func (r *StyleResolver) resolveDash(e *Entity, layer *LayerDef, parent *ParentContext) []float64 {
	name := normalizeLinetypeName(e.LineType)

	switch name {
	case "", "BYLAYER":
		name = r.layerLinetypeName(layer)
	case "BYBLOCK":
		if parent != nil {
			return parent.Dash
		}
		name = "CONTINUOUS"
	}

	pattern := r.patternFor(name)
	scale := headerFloat(r.data.Header.LtScale, 1.0) * fallbackOne(e.LineTypeScale)
	return scaleDash(pattern, scale)
}

func (r *StyleResolver) layerLinetypeName(layer *LayerDef) string {
	if layer == nil || layer.LineType == "" {
		return "CONTINUOUS"
	}
	return normalizeLinetypeName(layer.LineType)
}

func (r *StyleResolver) patternFor(name string) []float64 {
	if lt, ok := r.data.Linetypes[name]; ok {
		return normalizeLinetypePattern(lt.Pattern)
	}
	for key, lt := range r.data.Linetypes {
		if normalizeLinetypeName(key) == name {
			return normalizeLinetypePattern(lt.Pattern)
		}
	}
	if pattern, ok := builtinLinetypes[name]; ok {
		return pattern
	}
	return builtinLinetypes["CONTINUOUS"]
}

// normalizeLinetypePattern converts signed ltype-table entries (negative =
// gap, near-zero = dot) into positive dash/gap/dot widths.
func normalizeLinetypePattern(raw []float64) []float64 {
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		switch {
		case v < 0:
			out = append(out, -v)
		case v > -1e-9 && v < 1e-9:
			out = append(out, 0.1)
		default:
			out = append(out, v)
		}
	}
	return out
}

func scaleDash(pattern []float64, scale float64) []float64 {
	if len(pattern) == 0 {
		return []float64{}
	}
	out := make([]float64, len(pattern))
	for i, v := range pattern {
		out[i] = v * scale
	}
	return out
}

func normalizeLinetypeName(name string) string {
	return upper.String(strings.TrimSpace(name))
}

func headerFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func fallbackOne(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	return v
}

// fontFamilyFor maps a text style's font-file name to a CSS-ish font
// family using the heuristic in spec §4.5: "roman" implies serif,
// "mono"/"txt" implies monospace, everything else falls back to sans-serif.
func fontFamilyFor(fontFile string) string {
	lower := strings.ToLower(fontFile)
	switch {
	case strings.Contains(lower, "roman"):
		return "serif"
	case strings.Contains(lower, "mono"), strings.Contains(lower, "txt"):
		return "monospace"
	default:
		return "sans-serif"
	}
}
