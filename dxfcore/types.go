package dxfcore

// Vector is a 2D point, optionally carrying a Z ordinate and a polyline
// bulge. A zero Bulge means "no curvature" (tan(0) == 0), so callers never
// need to distinguish "bulge absent" from "bulge is a straight segment".
type Vector struct {
	X, Y, Z float64
	Bulge   float64
}

// ACI sentinel values used in Entity.Color and LayerDef.Color.
const (
	ColorByBlock = 0
	ColorByLayer = 256
)

// Lineweight sentinels, matching the DXF lineweight enum.
const (
	LineweightByBlock = -2
	LineweightByLayer = -1
	LineweightDefault = -3
)

// Kind tags the drawing primitive an Entity represents. The upstream AST
// parser (and the Raw-Pass Augmenter, for HATCH/POLYLINE recovery) produces
// entities tagged this way; the Entity Processor dispatches on Kind.
type Kind string

const (
	KindLine       Kind = "LINE"
	KindLWPolyline Kind = "LWPOLYLINE"
	KindPolyline   Kind = "POLYLINE"
	KindSpline     Kind = "SPLINE"
	KindCircle     Kind = "CIRCLE"
	KindArc        Kind = "ARC"
	KindText       Kind = "TEXT"
	KindMText      Kind = "MTEXT"
	KindAttrib     Kind = "ATTRIB"
	KindInsert     Kind = "INSERT"
)

// Entity is one drawing primitive from the DXF AST. It is a flat,
// per-kind-optional-field record rather than a family of Go types, mirroring
// how the upstream text-to-AST parser hands entities to this core: a single
// discriminated record tagged by Kind, dispatched on by the Entity
// Processor. Fields not meaningful for a given Kind are left zero.
type Entity struct {
	Kind Kind

	Layer         string
	Color         int     // ACI index; 0 = ByBlock, 256 (or unset) = ByLayer.
	HasColor      bool    // false means "use ByLayer" even though Color's zero value is ColorByBlock.
	TrueColor     *uint32 // 24-bit RGB; nil when absent.
	LineType      string
	LineTypeScale float64 // 0 means "unset", callers treat as 1.0.
	Lineweight    int
	InPaperSpace  bool

	// LINE / LWPOLYLINE / POLYLINE geometry. Vertices carry bulge for
	// LWPOLYLINE/POLYLINE segments.
	Vertices []Vector
	Closed   bool

	// CIRCLE / ARC geometry. Angles are degrees as read from the AST.
	Center     Vector
	Radius     float64
	StartAngle float64
	EndAngle   float64

	// SPLINE geometry.
	Degree        int
	ControlPoints []Vector
	Knots         []float64
	Weights       []float64

	// TEXT / MTEXT / ATTRIB.
	InsertionPoint    Vector
	AlignmentPoint    Vector
	HasAlignmentPoint bool
	HAlign            int // DXF group 72 raw value.
	VAlign            int // DXF group 73 raw value.
	AttachmentPoint   int // MTEXT group 71 (1..9), 0 when not MTEXT.
	Height            float64
	Rotation          float64 // degrees.
	WidthFactor       float64
	ObliqueAngle      float64
	Text              string
	StyleName         string

	// INSERT (block reference).
	BlockName   string
	InsertPoint Vector
	ScaleX      float64
	ScaleY      float64
	Attribs     []*Entity

	// IsHatchFill marks a polyline synthesized by the Raw-Pass Augmenter
	// from a HATCH SOLID loop: the Entity Processor renders it filled
	// rather than stroked.
	IsHatchFill bool
}

// Block is a reusable named group of entities, referenced by INSERT.
type Block struct {
	Name     string
	Base     Vector
	Entities []*Entity
}

// LayerDef is one row of the DXF layer table.
type LayerDef struct {
	Name       string
	Color      int
	HasColor   bool
	TrueColor  *uint32
	LineType   string
	Lineweight int
	Frozen     bool
	Visible    bool
}

// LinetypeDef is one row of the DXF linetype table: a named dash/gap
// pattern. Positive entries are dashes, negative are gaps, near-zero is a
// dot.
type LinetypeDef struct {
	Name    string
	Pattern []float64
}

// StyleDef is one row of the DXF text style table.
type StyleDef struct {
	Name             string
	FixedTextHeight  float64
	WidthFactor      float64
	ObliqueAngle     float64
	FontFile         string
}

// Header holds the subset of DXF header variables this core consults.
// Pointer fields are nil when the header variable is absent.
type Header struct {
	InsUnits   *int
	ExtMin     *Vector
	ExtMax     *Vector
	TextSize   *float64
	LtScale    *float64
	CelTScale  *float64
}

// DxfData is the upstream AST contract: the parsed document this core
// consumes. The Raw-Pass Augmenter mutates Entities and Blocks[*].Entities
// in place before the rest of the pipeline runs.
type DxfData struct {
	Header     Header
	Layers     map[string]*LayerDef
	Linetypes  map[string]*LinetypeDef
	Styles     map[string]*StyleDef
	Blocks     map[string]*Block
	Entities   []*Entity
}

// ShapeType is the renderer-facing primitive kind. A DXF import only ever
// emits line, polyline, circle and text shapes; arrow and rect exist in the
// shared contract for other importers (out of scope here).
type ShapeType string

const (
	ShapeLine     ShapeType = "line"
	ShapePolyline ShapeType = "polyline"
	ShapeCircle   ShapeType = "circle"
	ShapeText     ShapeType = "text"
	ShapeArrow    ShapeType = "arrow"
	ShapeRect     ShapeType = "rect"
)

// ByBlockPlaceholder is the reserved sentinel written into a cached
// block-shape's StrokeColor/FillColor when its color defers to the
// enclosing INSERT (ACI ByBlock). It never appears in a top-level Result:
// INSERT cloning always substitutes the resolved instance color before the
// shape leaves the block cache.
const ByBlockPlaceholder = "__BYBLOCK__"

// Transparent is the reserved stroke/fill value meaning "no color", passed
// through color-scheme post-processing unchanged.
const Transparent = "transparent"

// Point2D is a plain 2D point in the output coordinate space.
type Point2D struct {
	X, Y float64
}

// Shape is a renderer-agnostic drawing primitive emitted by the Entity
// Processor and normalized in place by [Normalize].
type Shape struct {
	ID   string
	Type ShapeType

	// Points carries line/polyline vertices; empty for circle/text/rect.
	Points []Point2D

	// Geometry for circle/rect/text anchor.
	X, Y, Radius, Width, Height float64

	StrokeColor   string
	FillColor     string
	StrokeWidth   float64
	StrokeDash    []float64
	StrokeEnabled bool
	FillEnabled   bool

	// Text fields, populated only when Type == ShapeText.
	Text       string
	FontSize   float64
	FontFamily string
	Italic     bool
	Rotation   float64 // radians.
	Align      string  // "left" | "center" | "right".
	VAlign     string  // "baseline" | "bottom" | "middle" | "top".
	ScaleX     float64
	ScaleY     float64

	LayerID    string
	FloorID    string
	Discipline string
}

// Layer is the editor-facing layer created once per DXF layer table entry
// encountered during import.
type Layer struct {
	ID              string
	Name            string
	DefaultStroke   string
	DefaultFill     string
	Visible         bool
	Locked          bool
	IsNative        bool
}

// Result is the aggregate return value of [Import].
type Result struct {
	Shapes []Shape
	Layers []Layer
	Width  float64
	Height float64
	Origin Point2D
}

// SourceUnits overrides the Unit Resolver's precedence chain; Auto falls
// through to $INSUNITS and then the unitless heuristic.
type SourceUnits string

const (
	UnitsAuto   SourceUnits = "auto"
	UnitsMeters SourceUnits = "meters"
	UnitsCm     SourceUnits = "cm"
	UnitsMm     SourceUnits = "mm"
	UnitsFeet   SourceUnits = "feet"
	UnitsInches SourceUnits = "inches"
)

// ColorScheme selects the post-processing mode applied to resolved,
// non-placeholder colors.
type ColorScheme string

const (
	ColorSchemeOriginal     ColorScheme = "original"
	ColorSchemeGrayscale    ColorScheme = "grayscale"
	ColorSchemeMonochrome   ColorScheme = "monochrome"
	ColorSchemeFixedGray153 ColorScheme = "fixedGray153"
	ColorSchemeCustom       ColorScheme = "custom"
)

// ImportOptions configures a single [Import] invocation.
type ImportOptions struct {
	FloorID           string
	DefaultLayerID    string
	ColorScheme       ColorScheme
	CustomColorHex    string // used when ColorScheme == ColorSchemeCustom.
	SourceUnits       SourceUnits
	IncludePaperSpace bool
	ReadOnly          bool
	// ExplodeBlocks is reserved: the core always explodes block references.
	ExplodeBlocks bool
}

// DiagnosticKind classifies a tolerated (non-fatal) condition recorded
// during import; see spec §7's error taxonomy.
type DiagnosticKind string

const (
	DiagnosticMalformedAst      DiagnosticKind = "malformed_ast"
	DiagnosticCycle             DiagnosticKind = "cycle"
	DiagnosticUnsupportedFeature DiagnosticKind = "unsupported_feature"
)

// Diagnostic records one tolerated condition encountered while importing.
// Diagnostics never change the emitted Result; they exist so a caller can
// surface "N entities were skipped" without the core raising an error.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

const discipline = "architecture"
