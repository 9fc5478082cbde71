package dxfimport_test

import (
	"strings"
	"testing"

	"github.com/corvid-cad/dxfimport/dxfcore"
	"github.com/corvid-cad/dxfimport/dxfparse"
)

// TestE2E_LineAndInsertDrawing runs a small synthetic drawing mixing a
// header $INSUNITS override, a layer table, a block definition, and two
// INSERTs of that block through the whole parse-then-import pipeline.
func TestE2E_LineAndInsertDrawing(t *testing.T) {
	raw := "0\nSECTION\n2\nHEADER\n" +
		"9\n$INSUNITS\n70\n4\n" +
		"0\nENDSEC\n" +
		"0\nSECTION\n2\nTABLES\n" +
		"0\nTABLE\n2\nLAYER\n" +
		"0\nLAYER\n2\nWALLS\n62\n5\n6\nCONTINUOUS\n" +
		"0\nENDTAB\n0\nENDSEC\n" +
		"0\nSECTION\n2\nBLOCKS\n" +
		"0\nBLOCK\n2\nDOOR\n10\n0\n20\n0\n" +
		"0\nLINE\n8\n0\n62\n0\n10\n0\n20\n0\n11\n1\n21\n0\n" +
		"0\nENDBLK\n0\nENDSEC\n" +
		"0\nSECTION\n2\nENTITIES\n" +
		"0\nLINE\n8\nWALLS\n10\n0\n20\n0\n11\n500\n21\n0\n" +
		"0\nINSERT\n8\nWALLS\n2\nDOOR\n10\n100\n20\n100\n62\n1\n50\n0\n" +
		"0\nINSERT\n8\nWALLS\n2\nDOOR\n10\n200\n20\n100\n62\n3\n50\n90\n" +
		"0\nENDSEC\n0\nEOF\n"

	data, err := dxfparse.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	opts := dxfcore.ImportOptions{
		DefaultLayerID: "default",
		ColorScheme:    dxfcore.ColorSchemeOriginal,
		SourceUnits:    dxfcore.UnitsAuto,
	}

	result, diagnostics, err := dxfcore.Import(raw, data, opts, dxfcore.ThemeDark)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	for _, d := range diagnostics {
		t.Logf("diagnostic: %s %s", d.Kind, d.Message)
	}

	// 1 direct line + 2 INSERT-cloned lines (ByBlock color 0 resolves to
	// each instance's own ACI override).
	if len(result.Shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %d", len(result.Shapes))
	}

	var byBlockResolved int
	for _, s := range result.Shapes {
		if s.StrokeColor == dxfcore.ByBlockPlaceholder {
			t.Errorf("unresolved ByBlock placeholder leaked into result: %+v", s)
		}
		if s.StrokeColor == "#FF0000" || s.StrokeColor == "#00FF00" {
			byBlockResolved++
		}
	}
	if byBlockResolved != 2 {
		t.Errorf("expected 2 cloned shapes to carry their INSERT's ACI color, got %d", byBlockResolved)
	}

	if len(result.Layers) == 0 {
		t.Error("expected at least one layer in the result")
	}

	// $INSUNITS=4 is millimeters: global scale should be 0.1 (mm -> cm).
	// Width spans x=0..500mm scaled to cm, so width should be 50.
	if result.Width <= 0 {
		t.Errorf("expected a positive drawing width, got %f", result.Width)
	}
}

// TestE2E_EntityCapRejectsOversizedDrawing exercises the fatal entity-count
// guard against a drawing text built from many LINE entities.
func TestE2E_EntityCapRejectsOversizedDrawing(t *testing.T) {
	var b strings.Builder
	b.WriteString("0\nSECTION\n2\nENTITIES\n")
	for i := 0; i < dxfcore.EntityLimit+1; i++ {
		b.WriteString("0\nLINE\n8\n0\n10\n0\n20\n0\n11\n1\n21\n0\n")
	}
	b.WriteString("0\nENDSEC\n0\nEOF\n")
	raw := b.String()

	data, err := dxfparse.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, _, err = dxfcore.Import(raw, data, dxfcore.ImportOptions{DefaultLayerID: "default"}, dxfcore.ThemeDark)
	if err == nil {
		t.Fatal("expected entity cap to reject the drawing")
	}
	if _, ok := err.(*dxfcore.SizeExceededError); !ok {
		t.Errorf("expected a *dxfcore.SizeExceededError, got %T: %v", err, err)
	}
}
