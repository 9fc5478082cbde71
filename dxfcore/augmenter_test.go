package dxfcore

import "testing"

func TestAugmentRecoversLegacyPolyline(t *testing.T) {
	raw := "0\nSECTION\n2\nENTITIES\n" +
		"0\nPOLYLINE\n8\nWALLS\n70\n1\n" +
		"0\nVERTEX\n10\n0\n20\n0\n" +
		"0\nVERTEX\n10\n10\n20\n10\n" +
		"0\nSEQEND\n" +
		"0\nENDSEC\n0\nEOF\n"

	data := newTestData()
	Augment(raw, data)

	if len(data.Entities) != 1 {
		t.Fatalf("expected 1 recovered entity, got %d", len(data.Entities))
	}
	e := data.Entities[0]
	if e.Kind != KindPolyline {
		t.Errorf("expected a recovered polyline, got %s", e.Kind)
	}
	if e.Layer != "WALLS" {
		t.Errorf("expected layer WALLS, got %q", e.Layer)
	}
	if !e.Closed {
		t.Errorf("expected closed flag to be recovered from bit 0 of group 70")
	}
	if len(e.Vertices) != 2 {
		t.Fatalf("expected 2 vertices, got %d", len(e.Vertices))
	}
	if e.Vertices[0].X != 0 || e.Vertices[0].Y != 0 {
		t.Errorf("expected first vertex (0,0), got (%f,%f)", e.Vertices[0].X, e.Vertices[0].Y)
	}
	if e.Vertices[1].X != 10 || e.Vertices[1].Y != 10 {
		t.Errorf("expected second vertex (10,10), got (%f,%f)", e.Vertices[1].X, e.Vertices[1].Y)
	}
}

func TestAugmentRecoversSolidHatch(t *testing.T) {
	raw := "0\nSECTION\n2\nENTITIES\n" +
		"0\nHATCH\n8\n0\n2\nSOLID\n62\n1\n91\n1\n" +
		"92\n1\n93\n4\n" +
		"72\n1\n10\n0\n20\n0\n11\n10\n21\n0\n" +
		"72\n1\n10\n10\n20\n0\n11\n10\n21\n10\n" +
		"72\n1\n10\n10\n20\n10\n11\n0\n21\n10\n" +
		"72\n1\n10\n0\n20\n10\n11\n0\n21\n0\n" +
		"0\nENDSEC\n0\nEOF\n"

	data := newTestData()
	Augment(raw, data)

	if len(data.Entities) != 1 {
		t.Fatalf("expected 1 recovered hatch entity, got %d", len(data.Entities))
	}
	e := data.Entities[0]
	if !e.IsHatchFill {
		t.Errorf("expected recovered HATCH to carry the hatch-fill marker")
	}
	if !e.Closed {
		t.Errorf("expected recovered HATCH loop to be closed")
	}
	if len(e.Vertices) < 4 {
		t.Errorf("expected at least 4 recovered vertices for a square loop, got %d", len(e.Vertices))
	}
	if e.Color != 1 || !e.HasColor {
		t.Errorf("expected hatch color index 1, got %d (hasColor=%v)", e.Color, e.HasColor)
	}
}

func TestAugmentSkipsNonSolidHatch(t *testing.T) {
	raw := "0\nSECTION\n2\nENTITIES\n" +
		"0\nHATCH\n8\n0\n2\nANSI31\n62\n1\n91\n1\n" +
		"92\n1\n93\n1\n72\n1\n10\n0\n20\n0\n11\n10\n21\n0\n" +
		"0\nENDSEC\n0\nEOF\n"

	data := newTestData()
	Augment(raw, data)

	if len(data.Entities) != 0 {
		t.Errorf("expected non-SOLID hatch pattern to be skipped, got %d entities", len(data.Entities))
	}
}

func TestAugmentAttachesBlockEntities(t *testing.T) {
	raw := "0\nSECTION\n2\nBLOCKS\n" +
		"0\nBLOCK\n2\nMYBLOCK\n" +
		"0\nPOLYLINE\n8\n0\n70\n0\n" +
		"0\nVERTEX\n10\n0\n20\n0\n" +
		"0\nVERTEX\n10\n1\n20\n1\n" +
		"0\nSEQEND\n" +
		"0\nENDBLK\n0\nENDSEC\n0\nEOF\n"

	data := newTestData()
	data.Blocks["MYBLOCK"] = &Block{Name: "MYBLOCK"}
	Augment(raw, data)

	block := data.Blocks["MYBLOCK"]
	if len(block.Entities) != 1 {
		t.Fatalf("expected the recovered polyline to attach to its block, got %d entities", len(block.Entities))
	}
}
