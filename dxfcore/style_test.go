package dxfcore

import (
	"reflect"
	"testing"
)

func baseData() *DxfData {
	return &DxfData{
		Layers:    map[string]*LayerDef{},
		Linetypes: map[string]*LinetypeDef{},
		Styles:    map[string]*StyleDef{},
		Blocks:    map[string]*Block{},
	}
}

func TestResolveColorTrueColorWins(t *testing.T) {
	tc := uint32(0x112233)
	e := &Entity{TrueColor: &tc, HasColor: true, Color: 1}
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	got := r.resolveColor(e, nil, nil)
	if got != "#112233" {
		t.Errorf("expected trueColor to take precedence, got %s", got)
	}
}

func TestResolveColorByBlockInheritsParent(t *testing.T) {
	e := &Entity{HasColor: true, Color: ColorByBlock}
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	got := r.resolveColor(e, nil, &ParentContext{Color: "#FF0000"})
	if got != "#FF0000" {
		t.Errorf("expected ByBlock to inherit parent color, got %s", got)
	}
}

func TestResolveColorByBlockNoParentEmitsPlaceholder(t *testing.T) {
	e := &Entity{HasColor: true, Color: ColorByBlock}
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	got := r.resolveColor(e, nil, nil)
	if got != ByBlockPlaceholder {
		t.Errorf("expected ByBlock placeholder with no parent, got %s", got)
	}
}

func TestResolveColorByLayerUsesLayerACI(t *testing.T) {
	layer := &LayerDef{Color: 1, HasColor: true}
	e := &Entity{HasColor: true, Color: ColorByLayer}
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	got := r.resolveColor(e, layer, nil)
	if got != "#FF0000" {
		t.Errorf("expected ByLayer to resolve through layer's ACI, got %s", got)
	}
}

func TestResolveColorIndex7ThemeDependent(t *testing.T) {
	e := &Entity{HasColor: true, Color: 7}
	dark := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	light := NewStyleResolver(baseData(), ImportOptions{}, ThemeLight)
	if dark.resolveColor(e, nil, nil) != "#FFFFFF" {
		t.Errorf("expected index 7 on dark theme to be white")
	}
	if light.resolveColor(e, nil, nil) != "#000000" {
		t.Errorf("expected index 7 on light theme to be black")
	}
}

func TestApplyColorSchemeGrayscale(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{ColorScheme: ColorSchemeGrayscale}, ThemeDark)
	got := r.applyColorScheme("#FF0000")
	if got != "#4C4C4C" {
		t.Errorf("expected grayscale red to be #4C4C4C, got %s", got)
	}
}

func TestApplyColorSchemeGrayscaleRoundsNotTruncates(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{ColorScheme: ColorSchemeGrayscale}, ThemeDark)
	// Y = 0.299*0 + 0.587*255 + 0.114*0 = 149.685, rounds to 150 (0x96);
	// truncation would instead yield 149 (0x95).
	got := r.applyColorScheme("#00FF00")
	if got != "#969696" {
		t.Errorf("expected grayscale green to round to #969696, got %s", got)
	}
}

func TestApplyColorSchemeMonochrome(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{ColorScheme: ColorSchemeMonochrome}, ThemeDark)
	if got := r.applyColorScheme("#FF0000"); got != "#000000" {
		t.Errorf("expected monochrome to force black, got %s", got)
	}
}

func TestApplyColorSchemePassesThroughPlaceholder(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{ColorScheme: ColorSchemeGrayscale}, ThemeDark)
	if got := r.applyColorScheme(ByBlockPlaceholder); got != ByBlockPlaceholder {
		t.Errorf("expected ByBlock placeholder to pass through grayscale unchanged, got %s", got)
	}
}

func TestResolveLineweightTable(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	cases := []struct {
		lw   int
		want float64
	}{
		{0, 1.0},
		{20, 1.5},
		{30, 2.0},
		{200, 10.0},
		{LineweightDefault, defaultLineweight},
	}
	for _, c := range cases {
		got := r.resolveLineweight(&Entity{Lineweight: c.lw}, nil)
		if got != c.want {
			t.Errorf("lineweight %d: expected %f, got %f", c.lw, c.want, got)
		}
	}
}

func TestResolveLineweightByLayer(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	layer := &LayerDef{Lineweight: 30}
	got := r.resolveLineweight(&Entity{Lineweight: LineweightByLayer}, layer)
	if got != 2.0 {
		t.Errorf("expected ByLayer lineweight 30 -> 2.0, got %f", got)
	}
}

func TestResolveDashLinetypeScaling(t *testing.T) {
	data := baseData()
	ltscale := 2.0
	data.Header.LtScale = &ltscale
	r := NewStyleResolver(data, ImportOptions{}, ThemeDark)

	e := &Entity{LineType: "DASHED", LineTypeScale: 3}
	got := r.resolveDash(e, nil, nil)
	want := []float64{60, 30}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected scaled dash %v, got %v", want, got)
	}
}

func TestResolveDashDefaultsToContinuous(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	got := r.resolveDash(&Entity{}, nil, nil)
	if len(got) != 0 {
		t.Errorf("expected continuous (empty) dash, got %v", got)
	}
}

func TestResolveDashByBlockNoParentCollapsesToContinuous(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	e := &Entity{LineType: "BYBLOCK"}
	got := r.resolveDash(e, nil, nil)
	if len(got) != 0 {
		t.Errorf("expected ByBlock with no parent to collapse to CONTINUOUS, got %v", got)
	}
}

func TestResolveDashByBlockWithParent(t *testing.T) {
	r := NewStyleResolver(baseData(), ImportOptions{}, ThemeDark)
	e := &Entity{LineType: "BYBLOCK"}
	got := r.resolveDash(e, nil, &ParentContext{Dash: []float64{4, 2}})
	want := []float64{4, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected ByBlock to inherit parent dash, got %v", got)
	}
}

func TestFontFamilyHeuristic(t *testing.T) {
	cases := []struct {
		font string
		want string
	}{
		{"romans.shx", "serif"},
		{"monotxt.shx", "monospace"},
		{"txt.shx", "monospace"},
		{"arial.ttf", "sans-serif"},
		{"", "sans-serif"},
	}
	for _, c := range cases {
		if got := fontFamilyFor(c.font); got != c.want {
			t.Errorf("fontFamilyFor(%q): expected %s, got %s", c.font, c.want, got)
		}
	}
}
