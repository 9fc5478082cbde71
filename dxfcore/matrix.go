package dxfcore

import "math"

// Matrix is a 2D affine transform: p' = (a*x + c*y + e, b*x + d*y + f).
// It is a plain value; every operation returns a new Matrix rather than
// mutating, so no two entities ever alias the same transform.
type Matrix struct {
	A, B, C, D, E, F float64
}

// IdentityMatrix is the no-op transform.
var IdentityMatrix = Matrix{A: 1, D: 1}

// ScaleMatrix returns a transform that scales uniformly or anisotropically
// about the origin.
func ScaleMatrix(sx, sy float64) Matrix {
	return Matrix{A: sx, D: sy}
}

// TranslateMatrix returns a transform that translates by (dx, dy).
func TranslateMatrix(dx, dy float64) Matrix {
	return Matrix{A: 1, D: 1, E: dx, F: dy}
}

// RotateMatrix returns a transform that rotates counter-clockwise by angle
// radians about the origin.
func RotateMatrix(angleRad float64) Matrix {
	cos, sin := math.Cos(angleRad), math.Sin(angleRad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply composes m (applied second) after n (applied first):
// Multiply(m, n).Apply(p) == m.Apply(n.Apply(p)).
func Multiply(m, n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Apply transforms a point through the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// ApplyVector transforms the X/Y of a Vector, preserving Z and Bulge.
func (m Matrix) ApplyVector(v Vector) Vector {
	x, y := m.Apply(v.X, v.Y)
	return Vector{X: x, Y: y, Z: v.Z, Bulge: v.Bulge}
}

// ApplyDirection transforms a direction vector (ignoring translation), used
// for axis vectors such as a text entity's effective Y axis.
func (m Matrix) ApplyDirection(x, y float64) (float64, float64) {
	return m.A*x + m.C*y, m.B*x + m.D*y
}

// IsSimilarity reports whether m preserves angles: uniform scale, rotation
// and translation only, no shear. Detected by equal row norms and a zero
// row dot product, per spec §4.4/GLOSSARY.
func (m Matrix) IsSimilarity() bool {
	const eps = 1e-9
	normRow1 := m.A*m.A + m.C*m.C
	normRow2 := m.B*m.B + m.D*m.D
	dot := m.A*m.B + m.C*m.D
	return math.Abs(normRow1-normRow2) < eps && math.Abs(dot) < eps
}

// UniformScale returns the scalar scale factor of a similarity transform
// (the square root of its determinant's absolute value). Callers must check
// IsSimilarity first; the result is meaningless otherwise.
func (m Matrix) UniformScale() float64 {
	return math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
}

// Determinant returns the matrix determinant; its sign flips under mirror
// (reflection) transforms.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// DecomposeRotationScale extracts the rotation (radians) and independent
// X/Y scale factors of m, used by the text-entity processor to recompose a
// glyph-local rotation/scale after the effective matrix is built from
// arbitrary parent transforms. It does not attempt to recover shear.
func (m Matrix) DecomposeRotationScale() (rotation, scaleX, scaleY float64) {
	scaleX = math.Hypot(m.A, m.B)
	scaleY = math.Hypot(m.C, m.D)
	rotation = math.Atan2(m.B, m.A)
	return rotation, scaleX, scaleY
}
