// Package geom holds the small integer geometry types used for window
// placement. Units are device-independent; the desktop host decides what one
// unit means on screen.
package geom

import "fmt"

// Point is a position.
type Point struct {
	X, Y int
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// String returns "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Size is a width and height.
type Size struct {
	W, H int
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle's size.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// CenterIn returns the top-left position that centers a rectangle of size s
// inside r.
func (r Rect) CenterIn(s Size) Point {
	return Point{
		X: r.X + (r.W-s.W)/2,
		Y: r.Y + (r.H-s.H)/2,
	}
}

// String returns "WxH+X+Y".
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}
