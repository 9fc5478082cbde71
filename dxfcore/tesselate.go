package dxfcore

import "math"

// segmentAngleDeg is the default angular step used to sample a full circle
// or arc into line segments, per spec §4.4.
const segmentAngleDeg = 2.5

const minArcSegments = 8

// TesselateCircle samples a circle centered at (cx, cy) with the given
// radius into a closed polygon of points.
func TesselateCircle(cx, cy, radius float64) []Point2D {
	return TesselateArc(cx, cy, radius, 0, 360)
}

// TesselateArc samples an arc from startDeg to endDeg (degrees, CCW,
// wrapping through 360 when end < start) into an open polyline of points.
func TesselateArc(cx, cy, radius, startDeg, endDeg float64) []Point2D {
	start := normalizeDeg(startDeg)
	end := normalizeDeg(endDeg)
	sweep := end - start
	if sweep <= 0 {
		sweep += 360
	}

	segments := int(math.Ceil(sweep / segmentAngleDeg))
	if segments < minArcSegments {
		segments = minArcSegments
	}

	points := make([]Point2D, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := start + sweep*float64(i)/float64(segments)
		rad := t * math.Pi / 180
		points = append(points, Point2D{
			X: cx + radius*math.Cos(rad),
			Y: cy + radius*math.Sin(rad),
		})
	}
	return points
}

func normalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// bulgeArc holds the geometric parameters recovered from a polyline
// segment's bulge factor.
type bulgeArc struct {
	Center         Point2D
	Radius         float64
	StartAngleDeg  float64
	SweepDeg       float64
}

// resolveBulge converts a bulge factor (tan(includedAngle/4), signed by
// direction) between two vertices into an arc, per spec §4.4/GLOSSARY. The
// bool result is false when bulge is (near) zero, meaning the segment stays
// a straight line.
func resolveBulge(p0, p1 Point2D, bulge float64) (bulgeArc, bool) {
	const eps = 1e-9
	if math.Abs(bulge) < eps {
		return bulgeArc{}, false
	}

	theta := 4 * math.Atan(bulge)
	chord := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
	if chord < eps {
		return bulgeArc{}, false
	}

	radius := chord / (2 * math.Sin(theta/2))
	midX, midY := (p0.X+p1.X)/2, (p0.Y+p1.Y)/2

	// Sagitta-based offset from chord midpoint to arc center, perpendicular
	// to the chord, direction set by the sign of bulge/theta.
	apothem := radius * math.Cos(theta/2)
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	length := math.Hypot(dx, dy)
	nx, ny := -dy/length, dx/length
	if theta < 0 {
		nx, ny = -nx, -ny
	}

	cx := midX + nx*apothem
	cy := midY + ny*apothem

	startAngle := math.Atan2(p0.Y-cy, p0.X-cx) * 180 / math.Pi
	return bulgeArc{
		Center:        Point2D{X: cx, Y: cy},
		Radius:        math.Abs(radius),
		StartAngleDeg: startAngle,
		SweepDeg:      theta * 180 / math.Pi,
	}, true
}

// TesselatePolylineBulges expands a closed-or-open vertex list, honoring
// each vertex's bulge to the next vertex, into a flattened point list
// suitable for a polyline/polygon shape. When closed is true, the segment
// from the last vertex back to the first is also expanded.
func TesselatePolylineBulges(vertices []Vector, closed bool) []Point2D {
	if len(vertices) == 0 {
		return nil
	}

	out := make([]Point2D, 0, len(vertices))
	n := len(vertices)
	limit := n - 1
	if closed {
		limit = n
	}

	out = append(out, Point2D{X: vertices[0].X, Y: vertices[0].Y})
	for i := 0; i < limit; i++ {
		p0 := Point2D{X: vertices[i].X, Y: vertices[i].Y}
		next := (i + 1) % n
		p1 := Point2D{X: vertices[next].X, Y: vertices[next].Y}

		arc, ok := resolveBulge(p0, p1, vertices[i].Bulge)
		if !ok {
			out = append(out, p1)
			continue
		}

		sweepSamples := TesselateArc(arc.Center.X, arc.Center.Y, arc.Radius, arc.StartAngleDeg, arc.StartAngleDeg+arc.SweepDeg)
		if arc.SweepDeg < 0 {
			sweepSamples = TesselateArc(arc.Center.X, arc.Center.Y, arc.Radius, arc.StartAngleDeg+arc.SweepDeg, arc.StartAngleDeg)
			reverse(sweepSamples)
		}
		if len(sweepSamples) > 0 {
			out = append(out, sweepSamples[1:]...)
		}
	}
	return out
}

func reverse(pts []Point2D) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

const (
	defaultSplineDegree = 3
	splineSampleCount   = 64
)

// TesselateSpline samples a SPLINE entity's control polygon into a
// polyline by evaluating the rational B-spline via de Boor's algorithm. A
// knot vector of the wrong length is replaced by a clamped uniform one and
// a weight list of the wrong length by unit weights, each independently,
// which keeps the importer usable on malformed or upstream-simplified
// splines.
func TesselateSpline(controlPoints []Vector, knots []float64, weights []float64, degree int) []Point2D {
	if len(controlPoints) == 0 {
		return nil
	}
	if len(controlPoints) == 1 {
		return []Point2D{{X: controlPoints[0].X, Y: controlPoints[0].Y}}
	}

	if degree <= 0 {
		degree = defaultSplineDegree
	}
	if degree > len(controlPoints)-1 {
		degree = len(controlPoints) - 1
	}

	knots = effectiveKnots(knots, len(controlPoints), degree)
	weights = effectiveWeights(weights, len(controlPoints))

	lo, hi := knots[degree], knots[len(knots)-degree-1]
	out := make([]Point2D, 0, splineSampleCount+1)
	for i := 0; i <= splineSampleCount; i++ {
		u := lo + (hi-lo)*float64(i)/float64(splineSampleCount)
		out = append(out, deBoorRational(u, degree, controlPoints, knots, weights))
	}
	return out
}

func effectiveKnots(knots []float64, numControl, degree int) []float64 {
	expected := numControl + degree + 1
	if len(knots) == expected {
		return knots
	}
	// Synthesize a clamped uniform knot vector.
	out := make([]float64, expected)
	numInternal := expected - 2*(degree+1)
	for i := 0; i <= degree; i++ {
		out[i] = 0
		out[expected-1-i] = float64(numInternal + 1)
	}
	for i := 0; i < numInternal; i++ {
		out[degree+1+i] = float64(i + 1)
	}
	return out
}

func effectiveWeights(weights []float64, numControl int) []float64 {
	if len(weights) == numControl {
		return weights
	}
	out := make([]float64, numControl)
	for i := range out {
		out[i] = 1.0
	}
	return out
}

// deBoorRational evaluates a rational B-spline curve at parameter u.
func deBoorRational(u float64, degree int, controlPoints []Vector, knots []float64, weights []float64) Point2D {
	n := len(controlPoints) - 1
	k := findSpan(u, degree, n, knots)

	d := make([][3]float64, degree+1)
	for j := 0; j <= degree; j++ {
		p := controlPoints[k-degree+j]
		w := weights[k-degree+j]
		d[j] = [3]float64{p.X * w, p.Y * w, w}
	}

	for r := 1; r <= degree; r++ {
		for j := degree; j >= r; j-- {
			idx := k - degree + j
			left := knots[idx]
			right := knots[idx+degree-r+1]
			alpha := 0.0
			if right != left {
				alpha = (u - left) / (right - left)
			}
			for c := 0; c < 3; c++ {
				d[j][c] = (1-alpha)*d[j-1][c] + alpha*d[j][c]
			}
		}
	}

	w := d[degree][2]
	if w == 0 {
		w = 1
	}
	return Point2D{X: d[degree][0] / w, Y: d[degree][1] / w}
}

func findSpan(u float64, degree, n int, knots []float64) int {
	if u >= knots[n+1] {
		return n
	}
	lo, hi := degree, n+1
	for lo < hi-1 {
		mid := (lo + hi) / 2
		if u < knots[mid] {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo
}
