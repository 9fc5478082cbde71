package dxfcore

import "testing"

func TestNormalizeTranslatesToOrigin(t *testing.T) {
	shapes := []Shape{
		{Type: ShapeLine, Points: []Point2D{{X: 100, Y: 100}, {X: 110, Y: 110}}},
	}
	width, height, origin := Normalize(shapes)

	if origin.X != 100 || origin.Y != 100 {
		t.Errorf("expected origin (100,100), got %v", origin)
	}
	if width != 10 || height != 10 {
		t.Errorf("expected width/height 10/10, got %f/%f", width, height)
	}
	if shapes[0].Points[0] != (Point2D{X: 0, Y: 0}) {
		t.Errorf("expected first point to move to origin, got %v", shapes[0].Points[0])
	}
	if shapes[0].Points[1] != (Point2D{X: 10, Y: 10}) {
		t.Errorf("expected second point at (10,10), got %v", shapes[0].Points[1])
	}
}

func TestNormalizeNoGeometryZeroes(t *testing.T) {
	width, height, origin := Normalize(nil)
	if width != 0 || height != 0 || origin != (Point2D{}) {
		t.Errorf("expected zero extents for no shapes, got w=%f h=%f origin=%v", width, height, origin)
	}
}

func TestNormalizeFoldsCircleExtent(t *testing.T) {
	shapes := []Shape{
		{Type: ShapeCircle, X: 50, Y: 50, Radius: 10},
	}
	_, _, origin := Normalize(shapes)
	if origin.X != 40 || origin.Y != 40 {
		t.Errorf("expected origin at circle's min extent (40,40), got %v", origin)
	}
	if shapes[0].X != 10 || shapes[0].Y != 10 {
		t.Errorf("expected circle center translated to (10,10), got (%f,%f)", shapes[0].X, shapes[0].Y)
	}
}
