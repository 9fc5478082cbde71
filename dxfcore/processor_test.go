package dxfcore

import "testing"

func newTestData() *DxfData {
	return &DxfData{
		Layers:    map[string]*LayerDef{},
		Linetypes: map[string]*LinetypeDef{},
		Styles:    map[string]*StyleDef{},
		Blocks:    map[string]*Block{},
	}
}

func TestProcessTopLevelLine(t *testing.T) {
	data := newTestData()
	data.Entities = []*Entity{
		{Kind: KindLine, Vertices: []Vector{{X: 0, Y: 0}, {X: 10, Y: 0}}},
	}
	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(100)

	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].Type != ShapeLine {
		t.Errorf("expected a line shape, got %s", shapes[0].Type)
	}
	want := []Point2D{{X: 0, Y: 0}, {X: 1000, Y: 0}}
	if shapes[0].Points[0] != want[0] || shapes[0].Points[1] != want[1] {
		t.Errorf("expected points %v, got %v", want, shapes[0].Points)
	}
}

func TestProcessInsertByBlockInheritance(t *testing.T) {
	data := newTestData()
	data.Blocks["Box"] = &Block{
		Name: "Box",
		Entities: []*Entity{
			{Kind: KindLine, HasColor: true, Color: ColorByBlock, Vertices: []Vector{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		},
	}
	data.Entities = []*Entity{
		{Kind: KindInsert, BlockName: "Box", HasColor: true, Color: 1, InsertPoint: Vector{}},
		{Kind: KindInsert, BlockName: "Box", HasColor: true, Color: 5, InsertPoint: Vector{X: 10}},
	}

	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(1)

	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes from two INSERTs, got %d", len(shapes))
	}
	if shapes[0].StrokeColor != "#FF0000" {
		t.Errorf("expected first insert to resolve red, got %s", shapes[0].StrokeColor)
	}
	if shapes[1].StrokeColor != "#0000FF" {
		t.Errorf("expected second insert to resolve blue, got %s", shapes[1].StrokeColor)
	}
}

func TestProcessInsertCycleSafety(t *testing.T) {
	data := newTestData()
	data.Blocks["A"] = &Block{
		Name: "A",
		Entities: []*Entity{
			{Kind: KindLine, Vertices: []Vector{{X: 0, Y: 0}, {X: 1, Y: 0}}},
			{Kind: KindInsert, BlockName: "B"},
		},
	}
	data.Blocks["B"] = &Block{
		Name: "B",
		Entities: []*Entity{
			{Kind: KindInsert, BlockName: "A"},
		},
	}
	data.Entities = []*Entity{
		{Kind: KindInsert, BlockName: "A"},
	}

	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(1)

	if len(shapes) != 1 {
		t.Fatalf("expected exactly 1 shape (A's direct line) from a cyclic block graph, got %d", len(shapes))
	}
	if shapes[0].Type != ShapeLine {
		t.Errorf("expected the surviving shape to be A's line, got %s", shapes[0].Type)
	}
}

func TestProcessCircleSimilarityFastPath(t *testing.T) {
	data := newTestData()
	data.Entities = []*Entity{
		{Kind: KindCircle, Center: Vector{X: 50, Y: 50}, Radius: 10},
	}
	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(100)

	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].Type != ShapeCircle {
		t.Errorf("expected similarity transform to keep a circle shape, got %s", shapes[0].Type)
	}
	if shapes[0].Radius != 1000 {
		t.Errorf("expected radius scaled by 100 to 1000, got %f", shapes[0].Radius)
	}
}

func TestProcessPolylineHatchFill(t *testing.T) {
	data := newTestData()
	data.Entities = []*Entity{
		{
			Kind:        KindLWPolyline,
			HasColor:    true,
			Color:       1,
			Closed:      true,
			IsHatchFill: true,
			Vertices:    []Vector{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		},
	}
	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(1)

	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].StrokeEnabled {
		t.Errorf("expected hatch fill shape to disable stroke")
	}
	if !shapes[0].FillEnabled || shapes[0].FillColor != "#FF0000" {
		t.Errorf("expected hatch fill shape to fill with resolved color, got enabled=%v color=%s", shapes[0].FillEnabled, shapes[0].FillColor)
	}
}

func TestSanitizeMText(t *testing.T) {
	raw := `Line1\PLine2\H2.5;\C1;Bold`
	got, _ := sanitizeMText(raw)
	want := "Line1\nLine2Bold"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSanitizeMTextStackedFraction(t *testing.T) {
	got, _ := sanitizeMText(`\S1^2;`)
	if got != "1/2" {
		t.Errorf("expected stacked fraction 1/2, got %q", got)
	}
}

func TestProcessMTextAttachmentPoint(t *testing.T) {
	data := newTestData()
	data.Entities = []*Entity{
		{Kind: KindMText, InsertionPoint: Vector{X: 0, Y: 0}, Height: 1, AttachmentPoint: 9, Text: "bottom right"},
	}
	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(1)

	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].Align != "right" {
		t.Errorf("expected attachment point 9 to align right, got %q", shapes[0].Align)
	}
	if shapes[0].VAlign != "bottom" {
		t.Errorf("expected attachment point 9 to valign bottom, got %q", shapes[0].VAlign)
	}
}

func TestProcessMTextWidthFactorFromInlineCode(t *testing.T) {
	data := newTestData()
	data.Entities = []*Entity{
		{Kind: KindMText, InsertionPoint: Vector{X: 0, Y: 0}, Height: 1, Text: `\W0.5;narrow`},
	}
	proc := NewProcessor(data, ImportOptions{}, ThemeDark)
	shapes := proc.ProcessTopLevel(1)

	if len(shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(shapes))
	}
	if shapes[0].Text != "narrow" {
		t.Errorf("expected width code stripped from rendered text, got %q", shapes[0].Text)
	}
	if shapes[0].ScaleX != 0.5 {
		t.Errorf("expected \\W0.5 to drive ScaleX, got %f", shapes[0].ScaleX)
	}
}

func TestSanitizeMTextExtractsWidthFactor(t *testing.T) {
	got, width := sanitizeMText(`\W0.8;Condensed text`)
	if got != "Condensed text" {
		t.Errorf("expected width code stripped from text, got %q", got)
	}
	if width != 0.8 {
		t.Errorf("expected extracted width factor 0.8, got %f", width)
	}
}
