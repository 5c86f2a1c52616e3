package layout

import "math"

// Matrix is an affine transform in the usual PDF column order
// [a b c d e f]:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Matrix [6]float64

// Identity is the no-op transform.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Translate returns a pure translation transform.
func Translate(x, y float64) Matrix {
	return Matrix{1, 0, 0, 1, x, y}
}

// Scale returns a pure scaling transform.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Mul composes transforms: (m.Mul(n)) applies n first, then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Origin returns the transform's translation component, i.e. where it maps
// (0, 0).
func (m Matrix) Origin() (x, y float64) {
	return m[4], m[5]
}

// VerticalScale returns the magnitude of the transform's vertical basis
// vector. For a text run transform this approximates the rendered font
// height.
func (m Matrix) VerticalScale() float64 {
	return math.Hypot(m[2], m[3])
}

// HorizontalScale returns the magnitude of the transform's horizontal basis
// vector.
func (m Matrix) HorizontalScale() float64 {
	return math.Hypot(m[0], m[1])
}
