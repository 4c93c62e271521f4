package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// Point is one sample of scene geometry: a position plus an optional color.
type Point struct {
	Position r3.Vector
	Color    color.NRGBA
	HasColor bool
}

// Cloud is an in-memory geometry-only point cloud. Camera poses and other
// reconstruction metadata are deliberately not represented; conversion keeps
// positions and colors only.
type Cloud struct {
	points   []Point
	hasColor bool
}

// New returns an empty cloud with capacity for size points.
func New(size int) *Cloud {
	return &Cloud{points: make([]Point, 0, size)}
}

// Add appends a point to the cloud.
func (c *Cloud) Add(p Point) {
	if p.HasColor {
		c.hasColor = true
	}
	c.points = append(c.points, p)
}

// Size returns the number of points.
func (c *Cloud) Size() int {
	return len(c.points)
}

// HasColor reports whether any point carries color data.
func (c *Cloud) HasColor() bool {
	return c.hasColor
}

// At returns the i-th point.
func (c *Cloud) At(i int) Point {
	return c.points[i]
}

// Iterate calls fn for every point, stopping early if fn returns false.
func (c *Cloud) Iterate(fn func(Point) bool) {
	for _, p := range c.points {
		if !fn(p) {
			return
		}
	}
}
