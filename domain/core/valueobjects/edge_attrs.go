package valueobjects

// Strength is the three-level ranking attached to an edge. It drives
// context ordering: strong connections surface before light ones.
type Strength string

const (
	StrengthStrong Strength = "strong"
	StrengthNormal Strength = "normal"
	StrengthLight  Strength = "light"
)

// IsValid reports whether the strength is one of the three levels
func (s Strength) IsValid() bool {
	switch s {
	case StrengthStrong, StrengthNormal, StrengthLight:
		return true
	default:
		return false
	}
}

// Priority returns the numeric traversal priority: strong=3, normal=2, light=1
func (s Strength) Priority() int {
	switch s {
	case StrengthStrong:
		return 3
	case StrengthLight:
		return 1
	default:
		return 2
	}
}

// StrengthFromWeight buckets a legacy numeric edge weight into the
// strength enum. Weights above 1.5 were the old "emphasized" range,
// weights below 0.5 the de-emphasized one.
func StrengthFromWeight(weight float64) Strength {
	switch {
	case weight > 1.5:
		return StrengthStrong
	case weight < 0.5:
		return StrengthLight
	default:
		return StrengthNormal
	}
}

// Direction describes how an edge participates in traversal
type Direction string

const (
	DirectionDirected      Direction = "directed"
	DirectionBidirectional Direction = "bidirectional"
)

// IsValid reports whether the direction is recognized
func (d Direction) IsValid() bool {
	return d == DirectionDirected || d == DirectionBidirectional
}
