// Package math provides the small vector value types used by model loading.
package math

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// InUnitRange reports whether both components lie in [0, 1].
func (v Vec2) InUnitRange() bool {
	return v.X >= 0 && v.X <= 1 && v.Y >= 0 && v.Y <= 1
}
