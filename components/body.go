package components

// Body holds the circular hitbox of an entity.
type Body struct {
	Radius float32 `inspect:"label,fmt:%.1f"`
}

// Overlaps reports whether two bodies at the given positions intersect.
func Overlaps(a Position, ab Body, b Position, bb Body) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	r := ab.Radius + bb.Radius
	return dx*dx+dy*dy < r*r
}
