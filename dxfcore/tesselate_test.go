package dxfcore

import (
	"math"
	"testing"
)

func TestTesselateCircleClosedRing(t *testing.T) {
	points := TesselateCircle(0, 0, 10)
	if len(points) < minArcSegments {
		t.Fatalf("expected at least %d points, got %d", minArcSegments, len(points))
	}
	first, last := points[0], points[len(points)-1]
	if math.Hypot(first.X-last.X, first.Y-last.Y) > 1e-6 {
		t.Errorf("expected circle tesselation to close, first=%v last=%v", first, last)
	}
	for _, p := range points {
		r := math.Hypot(p.X, p.Y)
		if math.Abs(r-10) > 1e-6 {
			t.Errorf("point %v not on radius 10 circle (r=%f)", p, r)
		}
	}
}

func TestTesselateArcEndpoints(t *testing.T) {
	points := TesselateArc(0, 0, 5, 0, 90)
	if len(points) < 2 {
		t.Fatalf("expected multiple points")
	}
	start := points[0]
	if math.Abs(start.X-5) > 1e-6 || math.Abs(start.Y) > 1e-6 {
		t.Errorf("expected arc to start at (5,0), got %v", start)
	}
	end := points[len(points)-1]
	if math.Abs(end.X) > 1e-6 || math.Abs(end.Y-5) > 1e-6 {
		t.Errorf("expected arc to end at (0,5), got %v", end)
	}
}

func TestResolveBulgeQuarterCircle(t *testing.T) {
	// bulge = tan(theta/4); theta = pi/2 gives bulge = tan(pi/8).
	bulge := math.Tan(math.Pi / 8)
	arc, ok := resolveBulge(Point2D{X: 10, Y: 0}, Point2D{X: 0, Y: 10}, bulge)
	if !ok {
		t.Fatalf("expected non-zero bulge to produce an arc")
	}
	if math.Abs(arc.Radius-10) > 1e-6 {
		t.Errorf("expected radius 10, got %f", arc.Radius)
	}
}

func TestResolveBulgeZeroIsStraightLine(t *testing.T) {
	_, ok := resolveBulge(Point2D{X: 0, Y: 0}, Point2D{X: 10, Y: 0}, 0)
	if ok {
		t.Errorf("expected zero bulge to report no arc")
	}
}

func TestTesselatePolylineBulgesStraightSegments(t *testing.T) {
	vertices := []Vector{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	points := TesselatePolylineBulges(vertices, false)
	if len(points) != 3 {
		t.Fatalf("expected 3 points for an all-straight open polyline, got %d", len(points))
	}
}

func TestTesselateSplineLinearControlPolygon(t *testing.T) {
	controls := []Vector{{X: 0, Y: 0}, {X: 10, Y: 0}}
	points := TesselateSpline(controls, nil, nil, 1)
	if len(points) < 2 {
		t.Fatalf("expected sampled points for a 2-point degree-1 spline")
	}
	first, last := points[0], points[len(points)-1]
	if math.Abs(first.X) > 1e-6 || math.Abs(last.X-10) > 1e-6 {
		t.Errorf("expected degree-1 spline to span its control points, got first=%v last=%v", first, last)
	}
}
