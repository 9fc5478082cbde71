package dxfcore

// Import runs the full pipeline described in the package doc: it augments
// the AST with raw-text-recovered entities, resolves the global unit
// scale, then walks every top-level entity (and, transitively, every
// referenced block) into a normalized Result. The only error it returns is
// [*SizeExceededError]; every other malformed-input condition is recovered
// and surfaced as a [Diagnostic] instead.
func Import(raw string, data *DxfData, opts ImportOptions, theme Theme) (Result, []Diagnostic, error) {
	Augment(raw, data)

	if count := countEntities(data); count > EntityLimit {
		return Result{}, nil, &SizeExceededError{Count: count, Limit: EntityLimit}
	}

	globalScale := ResolveGlobalScale(data, opts)

	proc := NewProcessor(data, opts, theme)
	shapes := proc.ProcessTopLevel(globalScale)

	width, height, origin := Normalize(shapes)

	layers := buildLayers(data, opts)

	result := Result{
		Shapes: shapes,
		Layers: layers,
		Width:  width,
		Height: height,
		Origin: origin,
	}
	return result, proc.Diagnostics(), nil
}

// ImportSimple is a convenience wrapper over [Import] for callers that do
// not need per-entity diagnostics.
func ImportSimple(raw string, data *DxfData, opts ImportOptions) (Result, error) {
	result, _, err := Import(raw, data, opts, ThemeDark)
	return result, err
}

// countEntities sums top-level entities and every block's entities
// (pre-expansion, pre-augmentation of INSERT fan-out), matching the
// pre-scan guard in spec §4.5/§6.
func countEntities(data *DxfData) int {
	count := len(data.Entities)
	for _, b := range data.Blocks {
		count += len(b.Entities)
	}
	return count
}

func buildLayers(data *DxfData, opts ImportOptions) []Layer {
	layers := make([]Layer, 0, len(data.Layers))
	for name, def := range data.Layers {
		layers = append(layers, Layer{
			ID:            name,
			Name:          name,
			DefaultStroke: layerDefaultStroke(def),
			DefaultFill:   Transparent,
			Visible:       def.Visible,
			Locked:        opts.ReadOnly,
			IsNative:      false,
		})
	}
	return layers
}

func layerDefaultStroke(def *LayerDef) string {
	if def.TrueColor != nil {
		return formatHex(*def.TrueColor)
	}
	if def.HasColor {
		if rgb, ok := aciColor(def.Color); ok {
			return formatHex(rgb)
		}
	}
	return "#FFFFFF"
}
