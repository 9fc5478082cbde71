package dxfcore

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const chordClosureToleranceSq = 1e-3 * 1e-3
const bulgeCircleTolerance = 1e-3

// Processor walks the entities produced by the Augmenter and the upstream
// parser, emitting Shapes through a running affine transform. One
// Processor is scoped to a single [Import] call: its block cache, cycle
// stack and entity counter are never shared across invocations.
type Processor struct {
	data    *DxfData
	opts    ImportOptions
	styles  *StyleResolver
	theme   Theme
	layers  map[string]*LayerDef

	blockCache map[string][]Shape
	onStack    map[string]bool

	count int
	idSeq int

	diagnostics []Diagnostic
}

// NewProcessor builds a Processor bound to a single import's parsed tables.
func NewProcessor(data *DxfData, opts ImportOptions, theme Theme) *Processor {
	return &Processor{
		data:       data,
		opts:       opts,
		styles:     NewStyleResolver(data, opts, theme),
		theme:      theme,
		layers:     data.Layers,
		blockCache: make(map[string][]Shape),
		onStack:    make(map[string]bool),
	}
}

// Diagnostics returns the non-fatal issues recorded while processing.
func (p *Processor) Diagnostics() []Diagnostic {
	return p.diagnostics
}

func (p *Processor) diagnose(kind DiagnosticKind, format string, args ...any) {
	p.diagnostics = append(p.diagnostics, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (p *Processor) nextID(prefix string) string {
	p.idSeq++
	return fmt.Sprintf("%s-%d", prefix, p.idSeq)
}

// ProcessTopLevel runs every top-level entity (skipping INSERT-owned
// ATTRIBs, which are handled by the INSERT case) through the top-level
// transform scale(globalScale, globalScale), returning the accumulated
// shapes in AST order. A ByBlock color with no enclosing INSERT to inherit
// from is replaced by the theme's default color.
func (p *Processor) ProcessTopLevel(globalScale float64) []Shape {
	top := ScaleMatrix(globalScale, globalScale)
	var out []Shape
	for _, e := range p.data.Entities {
		if e.InPaperSpace && !p.opts.IncludePaperSpace {
			continue
		}
		out = append(out, p.ProcessEntity(e, top, nil, p.effectiveLayerID(e.Layer))...)
	}
	fallback := p.styles.applyColorScheme(p.theme.defaultHex())
	for i := range out {
		if out[i].StrokeColor == ByBlockPlaceholder {
			out[i].StrokeColor = fallback
		}
		if out[i].FillColor == ByBlockPlaceholder {
			out[i].FillColor = fallback
		}
	}
	return out
}

func (p *Processor) effectiveLayerID(name string) string {
	if _, ok := p.layers[name]; name == "" || !ok {
		return p.opts.DefaultLayerID
	}
	return name
}

func (p *Processor) layerFor(name string) *LayerDef {
	return p.layers[name]
}

// ProcessEntity dispatches a single entity through the Style Resolver and
// Curve Tesselator and returns the Shapes it produces. m is the effective
// transform in force (already composed with any enclosing INSERT);
// parent carries the enclosing INSERT's resolved color/dash, nil when
// building a block-cache entry or at top level.
func (p *Processor) ProcessEntity(e *Entity, m Matrix, parent *ParentContext, layerID string) []Shape {
	p.count++

	layer := p.layerFor(e.Layer)
	style := p.styles.Resolve(e, layer, parent)

	switch e.Kind {
	case KindLine:
		return p.processLine(e, m, style, layerID)
	case KindLWPolyline, KindPolyline:
		return p.processPolyline(e, m, style, layerID)
	case KindSpline:
		return p.processSpline(e, m, style, layerID)
	case KindCircle:
		return p.processCircle(e, m, style, layerID)
	case KindArc:
		return p.processArc(e, m, style, layerID)
	case KindText, KindMText, KindAttrib:
		return p.processText(e, m, style, layerID)
	case KindInsert:
		return p.processInsert(e, m, layerID)
	default:
		p.diagnose(DiagnosticUnsupportedFeature, "unsupported entity kind %q", e.Kind)
		return nil
	}
}

func (p *Processor) processLine(e *Entity, m Matrix, style ResolvedStyle, layerID string) []Shape {
	if len(e.Vertices) < 2 {
		p.diagnose(DiagnosticMalformedAst, "LINE with fewer than 2 vertices")
		return nil
	}
	a := m.ApplyVector(e.Vertices[0])
	b := m.ApplyVector(e.Vertices[1])
	return []Shape{p.lineShape(a, b, style, layerID)}
}

func (p *Processor) lineShape(a, b Vector, style ResolvedStyle, layerID string) Shape {
	return Shape{
		ID:            p.nextID("shape"),
		Type:          ShapeLine,
		Points:        []Point2D{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}},
		StrokeColor:   style.StrokeColor,
		StrokeWidth:   style.StrokeWidth,
		StrokeDash:    style.StrokeDash,
		StrokeEnabled: true,
		FillEnabled:   false,
		LayerID:       layerID,
		FloorID:       p.opts.FloorID,
		Discipline:    discipline,
	}
}

func (p *Processor) processPolyline(e *Entity, m Matrix, style ResolvedStyle, layerID string) []Shape {
	if len(e.Vertices) == 0 {
		p.diagnose(DiagnosticMalformedAst, "polyline with no vertices")
		return nil
	}

	if circle, ok := p.bulgeCircleShortcut(e, m, style, layerID); ok {
		return []Shape{circle}
	}

	local := TesselatePolylineBulges(e.Vertices, e.Closed)
	points := make([]Point2D, len(local))
	for i, pt := range local {
		x, y := m.Apply(pt.X, pt.Y)
		points[i] = Point2D{X: x, Y: y}
	}

	if e.Closed && len(points) > 1 {
		first, last := points[0], points[len(points)-1]
		if sqDist(first, last) > chordClosureToleranceSq {
			points = append(points, first)
		}
	}

	shape := Shape{
		ID:          p.nextID("shape"),
		Type:        ShapePolyline,
		Points:      points,
		StrokeColor: style.StrokeColor,
		StrokeWidth: style.StrokeWidth,
		StrokeDash:  style.StrokeDash,
		LayerID:     layerID,
		FloorID:     p.opts.FloorID,
		Discipline:  discipline,
	}
	if e.IsHatchFill {
		shape.StrokeEnabled = false
		shape.FillEnabled = true
		shape.FillColor = style.StrokeColor
	} else {
		shape.StrokeEnabled = true
		shape.FillEnabled = false
	}
	return []Shape{shape}
}

// bulgeCircleShortcut detects the special case in spec §4.5: exactly two
// vertices, both bulge magnitude ~1 (a semicircle each way), a uniform
// similarity transform, and a closed flag — that combination means the
// polyline is really a full circle and is emitted as such.
func (p *Processor) bulgeCircleShortcut(e *Entity, m Matrix, style ResolvedStyle, layerID string) (Shape, bool) {
	if !e.Closed || len(e.Vertices) != 2 || !m.IsSimilarity() {
		return Shape{}, false
	}
	v0, v1 := e.Vertices[0], e.Vertices[1]
	if math.Abs(math.Abs(v0.Bulge)-1) > bulgeCircleTolerance || math.Abs(math.Abs(v1.Bulge)-1) > bulgeCircleTolerance {
		return Shape{}, false
	}

	chordX, chordY := v1.X-v0.X, v1.Y-v0.Y
	chordLen := math.Hypot(chordX, chordY)
	midX, midY := (v0.X+v1.X)/2, (v0.Y+v1.Y)/2
	cx, cy := m.Apply(midX, midY)
	scale := m.UniformScale()

	return Shape{
		ID:            p.nextID("shape"),
		Type:          ShapeCircle,
		X:             cx,
		Y:             cy,
		Radius:        (chordLen / 2) * scale,
		StrokeColor:   style.StrokeColor,
		StrokeWidth:   style.StrokeWidth,
		StrokeDash:    style.StrokeDash,
		StrokeEnabled: true,
		LayerID:       layerID,
		FloorID:       p.opts.FloorID,
		Discipline:    discipline,
	}, true
}

func (p *Processor) processSpline(e *Entity, m Matrix, style ResolvedStyle, layerID string) []Shape {
	if len(e.ControlPoints) < 2 {
		p.diagnose(DiagnosticMalformedAst, "SPLINE with fewer than 2 control points")
		return nil
	}
	local := TesselateSpline(e.ControlPoints, e.Knots, e.Weights, e.Degree)
	points := make([]Point2D, len(local))
	for i, pt := range local {
		x, y := m.Apply(pt.X, pt.Y)
		points[i] = Point2D{X: x, Y: y}
	}
	return []Shape{{
		ID:            p.nextID("shape"),
		Type:          ShapePolyline,
		Points:        points,
		StrokeColor:   style.StrokeColor,
		StrokeWidth:   style.StrokeWidth,
		StrokeDash:    style.StrokeDash,
		StrokeEnabled: true,
		LayerID:       layerID,
		FloorID:       p.opts.FloorID,
		Discipline:    discipline,
	}}
}

func (p *Processor) processCircle(e *Entity, m Matrix, style ResolvedStyle, layerID string) []Shape {
	if m.IsSimilarity() {
		cx, cy := m.Apply(e.Center.X, e.Center.Y)
		return []Shape{{
			ID:            p.nextID("shape"),
			Type:          ShapeCircle,
			X:             cx,
			Y:             cy,
			Radius:        e.Radius * m.UniformScale(),
			StrokeColor:   style.StrokeColor,
			StrokeWidth:   style.StrokeWidth,
			StrokeDash:    style.StrokeDash,
			StrokeEnabled: true,
			LayerID:       layerID,
			FloorID:       p.opts.FloorID,
			Discipline:    discipline,
		}}
	}

	local := TesselateCircle(e.Center.X, e.Center.Y, e.Radius)
	points := make([]Point2D, len(local))
	for i, pt := range local {
		x, y := m.Apply(pt.X, pt.Y)
		points[i] = Point2D{X: x, Y: y}
	}
	return []Shape{{
		ID:            p.nextID("shape"),
		Type:          ShapePolyline,
		Points:        points,
		StrokeColor:   style.StrokeColor,
		StrokeWidth:   style.StrokeWidth,
		StrokeDash:    style.StrokeDash,
		StrokeEnabled: true,
		LayerID:       layerID,
		FloorID:       p.opts.FloorID,
		Discipline:    discipline,
	}}
}

func (p *Processor) processArc(e *Entity, m Matrix, style ResolvedStyle, layerID string) []Shape {
	start, end := normalizeArcAngles(e.StartAngle, e.EndAngle)
	local := TesselateArc(e.Center.X, e.Center.Y, e.Radius, start, end)
	points := make([]Point2D, len(local))
	for i, pt := range local {
		x, y := m.Apply(pt.X, pt.Y)
		points[i] = Point2D{X: x, Y: y}
	}
	return []Shape{{
		ID:            p.nextID("shape"),
		Type:          ShapePolyline,
		Points:        points,
		StrokeColor:   style.StrokeColor,
		StrokeWidth:   style.StrokeWidth,
		StrokeDash:    style.StrokeDash,
		StrokeEnabled: true,
		LayerID:       layerID,
		FloorID:       p.opts.FloorID,
		Discipline:    discipline,
	}}
}

// normalizeArcAngles returns arc angles in degrees for [TesselateArc]. When
// either magnitude exceeds 2π+ε the pair is taken to be degrees already and
// returned unchanged; otherwise both values are read as radians and
// converted to degrees, so an arc whose two angles both lie within ±2π+ε
// degrees is treated as a radian arc.
func normalizeArcAngles(startDeg, endDeg float64) (float64, float64) {
	const twoPiEps = 2*math.Pi + 1e-6
	if math.Abs(startDeg) > twoPiEps || math.Abs(endDeg) > twoPiEps {
		return startDeg, endDeg
	}
	return startDeg * 180 / math.Pi, endDeg * 180 / math.Pi
}

const textHeightFloor = 0.001

var mtextUnitCodes = regexp.MustCompile(`\\[HCWQTfA][^;]*;`)
var mtextStackFrac = regexp.MustCompile(`\\S([^;^]*)\^([^;]*);`)
var mtextWidthCode = regexp.MustCompile(`\\W([0-9.]+);`)

// sanitizeMText implements the inline-formatting cleanup in spec §4.5,
// returning the cleaned text and the \W width factor (0 when absent, before
// it's stripped along with the other formatting codes).
func sanitizeMText(raw string) (string, float64) {
	s := raw
	widthFactor := 0.0
	if m := mtextWidthCode.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			widthFactor = v
		}
	}
	s = strings.ReplaceAll(s, `\P`, "\n")
	s = mtextStackFrac.ReplaceAllString(s, "$1/$2")
	s = mtextUnitCodes.ReplaceAllString(s, "")
	for _, code := range []string{`\L`, `\l`, `\O`, `\o`, `\K`, `\k`} {
		s = strings.ReplaceAll(s, code, "")
	}
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s, widthFactor
}

func (p *Processor) processText(e *Entity, m Matrix, style ResolvedStyle, layerID string) []Shape {
	text := e.Text
	mtextWidthFactor := 0.0
	if e.Kind == KindMText {
		text, mtextWidthFactor = sanitizeMText(text)
	}

	hAlign, vAlign := e.HAlign, e.VAlign
	if e.Kind == KindMText {
		hAlign, vAlign = mtextAlignCodes(e.AttachmentPoint)
	}

	anchor := e.InsertionPoint
	if e.HasAlignmentPoint && e.Kind != KindMText && (e.HAlign != 0 || e.VAlign != 0) {
		anchor = e.AlignmentPoint
	}

	height := e.Height
	if height <= 0 {
		if st, ok := p.data.Styles[e.StyleName]; ok && st.FixedTextHeight > 0 {
			height = st.FixedTextHeight
		}
	}
	if height <= 0 {
		height = headerFloat(p.data.Header.TextSize, 1.0)
	}
	if height < textHeightFloor {
		height = textHeightFloor
	}

	rotation, scaleX, scaleY := m.DecomposeRotationScale()
	mirrored := m.Determinant() < 0

	widthFactor := e.WidthFactor
	if widthFactor == 0 {
		widthFactor = mtextWidthFactor
	}
	obliqueDeg := e.ObliqueAngle
	fontFile := ""
	if st, ok := p.data.Styles[e.StyleName]; ok {
		if widthFactor == 0 {
			widthFactor = st.WidthFactor
		}
		obliqueDeg += st.ObliqueAngle
		fontFile = st.FontFile
	}
	if widthFactor == 0 {
		widthFactor = 1.0
	}

	ax, ay := m.Apply(anchor.X, anchor.Y)
	vshiftX, vshiftY := verticalAlignShift(vAlign, height)
	svx, svy := m.ApplyDirection(vshiftX, vshiftY)
	ax += svx
	ay += svy

	signY := -1.0
	if mirrored {
		signY = 1.0
	}

	return []Shape{{
		ID:          p.nextID("shape"),
		Type:        ShapeText,
		X:           ax,
		Y:           ay,
		Text:        text,
		FontSize:    height,
		FontFamily:  fontFamilyFor(fontFile),
		Italic:      math.Abs(obliqueDeg) > 10,
		Rotation:    rotation,
		Align:       hAlignName(hAlign),
		VAlign:      vAlignName(vAlign),
		ScaleX:      scaleX * widthFactor,
		ScaleY:      scaleY * signY,
		StrokeColor: style.StrokeColor,
		LayerID:     layerID,
		FloorID:     p.opts.FloorID,
		Discipline:  discipline,
	}}
}

// mtextAlignCodes maps MTEXT's group-71 attachment point (1..9, row-major
// top-left to bottom-right) onto the same h/v codes hAlignName, vAlignName,
// and verticalAlignShift already use for TEXT's group 72/73.
func mtextAlignCodes(attachmentPoint int) (h, v int) {
	if attachmentPoint < 1 || attachmentPoint > 9 {
		return 0, 0
	}
	idx := attachmentPoint - 1
	row, col := idx/3, idx%3
	h = col // 0=left, 1=center, 2=right
	switch row {
	case 0:
		v = 3 // top
	case 1:
		v = 2 // middle
	case 2:
		v = 1 // bottom
	}
	return h, v
}

func verticalAlignShift(vAlign int, height float64) (float64, float64) {
	switch vAlign {
	case 1: // bottom
		return 0, 0
	case 2: // middle
		return 0, height / 2
	case 3: // top
		return 0, height
	default: // baseline
		return 0, 0
	}
}

func hAlignName(h int) string {
	switch h {
	case 2:
		return "right"
	case 1, 4:
		return "center"
	default:
		return "left"
	}
}

func vAlignName(v int) string {
	switch v {
	case 1:
		return "bottom"
	case 2:
		return "middle"
	case 3:
		return "top"
	default:
		return "baseline"
	}
}

func (p *Processor) processInsert(e *Entity, parentMatrix Matrix, parentLayerID string) []Shape {
	blockName := e.BlockName
	block, ok := p.data.Blocks[blockName]
	if !ok {
		p.diagnose(DiagnosticMalformedAst, "INSERT references unknown block %q", blockName)
		return nil
	}
	if p.onStack[blockName] {
		p.diagnose(DiagnosticCycle, "cycle detected at block %q, insert skipped", blockName)
		return nil
	}

	cached, ok := p.blockCache[blockName]
	if !ok {
		p.onStack[blockName] = true
		cached = p.buildBlockCache(block)
		delete(p.onStack, blockName)
		p.blockCache[blockName] = cached
	}

	sx, sy := e.ScaleX, e.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	tBase := TranslateMatrix(-block.Base.X, -block.Base.Y)
	s := ScaleMatrix(sx, sy)
	r := RotateMatrix(e.Rotation * math.Pi / 180)
	tIns := TranslateMatrix(e.InsertPoint.X, e.InsertPoint.Y)

	local := Multiply(r, tBase)
	local = Multiply(s, local)
	local = Multiply(tIns, local)
	final := Multiply(parentMatrix, local)

	layer := p.layerFor(e.Layer)
	style := p.styles.Resolve(e, layer, nil)
	layerID := p.effectiveLayerID(e.Layer)

	out := make([]Shape, 0, len(cached))
	for _, shape := range cached {
		out = append(out, p.cloneShape(shape, final, style.StrokeColor))
	}

	parent := &ParentContext{Color: style.StrokeColor, Dash: style.StrokeDash}
	for _, attrib := range e.Attribs {
		out = append(out, p.ProcessEntity(attrib, final, parent, layerID)...)
	}

	return out
}

// buildBlockCache processes a block's entities exactly once, with the
// identity matrix and no parent context, so ByBlock-tagged children carry
// the [ByBlockPlaceholder] sentinel in the cached shapes. Every instance's
// clone later substitutes the sentinel for its own resolved color.
func (p *Processor) buildBlockCache(block *Block) []Shape {
	var out []Shape
	for _, e := range block.Entities {
		layerID := p.effectiveLayerID(e.Layer)
		out = append(out, p.ProcessEntity(e, IdentityMatrix, nil, layerID)...)
	}
	return out
}

// cloneShape produces a fresh-id copy of a cached block shape transformed
// by the instance's final matrix, substituting the ByBlock placeholder
// with the instance's resolved color and reapplying the active color
// scheme.
func (p *Processor) cloneShape(src Shape, final Matrix, instanceColor string) Shape {
	clone := src
	clone.ID = p.nextID("shape")

	if clone.StrokeColor == ByBlockPlaceholder {
		clone.StrokeColor = instanceColor
	}
	clone.StrokeColor = p.styles.applyColorScheme(clone.StrokeColor)
	if clone.FillColor == ByBlockPlaceholder {
		clone.FillColor = instanceColor
	}
	if clone.FillColor != "" {
		clone.FillColor = p.styles.applyColorScheme(clone.FillColor)
	}

	switch clone.Type {
	case ShapeCircle:
		clone.X, clone.Y = final.Apply(src.X, src.Y)
		clone.Radius = src.Radius * final.UniformScale()
	case ShapeText:
		clone.X, clone.Y = final.Apply(src.X, src.Y)
		rotation, scaleX, scaleY := final.DecomposeRotationScale()
		clone.Rotation = src.Rotation + rotation
		clone.ScaleX = src.ScaleX * scaleX
		clone.ScaleY = src.ScaleY * scaleY
	default:
		if len(src.Points) > 0 {
			points := make([]Point2D, len(src.Points))
			for i, pt := range src.Points {
				x, y := final.Apply(pt.X, pt.Y)
				points[i] = Point2D{X: x, Y: y}
			}
			clone.Points = points
		}
	}

	return clone
}

func sqDist(a, b Point2D) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
