package dxfcore

import "math"

// Normalize folds every emitted shape's geometry into a running bounding
// box, then translates all points/anchors so the minimum corner sits at
// the origin, per spec §4.6. It returns the width, height and origin of
// the pre-translation bounding box; shapes are mutated in place.
func Normalize(shapes []Shape) (width, height float64, origin Point2D) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	seen := false

	fold := func(x, y float64) {
		seen = true
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	for i := range shapes {
		s := &shapes[i]
		if len(s.Points) > 0 {
			for _, pt := range s.Points {
				fold(pt.X, pt.Y)
			}
			continue
		}
		switch s.Type {
		case ShapeCircle:
			fold(s.X-s.Radius, s.Y-s.Radius)
			fold(s.X+s.Radius, s.Y+s.Radius)
		case ShapeRect:
			fold(s.X, s.Y)
			fold(s.X+s.Width, s.Y+s.Height)
		case ShapeText, ShapeArrow:
			fold(s.X, s.Y)
		}
	}

	if !seen {
		return 0, 0, Point2D{}
	}

	for i := range shapes {
		s := &shapes[i]
		for j := range s.Points {
			s.Points[j].X -= minX
			s.Points[j].Y -= minY
		}
		switch s.Type {
		case ShapeCircle, ShapeRect, ShapeText, ShapeArrow:
			s.X -= minX
			s.Y -= minY
		}
	}

	return maxX - minX, maxY - minY, Point2D{X: minX, Y: minY}
}
