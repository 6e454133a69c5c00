package valueobjects

// Position is a value object for a node's canvas coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Dimensions is a value object for a node's rendered size
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewDimensions creates dimensions
func NewDimensions(width, height float64) Dimensions {
	return Dimensions{Width: width, Height: height}
}

// Equals checks if two dimensions are equal
func (d Dimensions) Equals(other Dimensions) bool {
	return d.Width == other.Width && d.Height == other.Height
}
