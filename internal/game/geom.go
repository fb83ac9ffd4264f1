package game

import "math"

// Vec2 is a world-space point or direction in pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2             { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2             { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2        { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Dot(b Vec2) float64          { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len() float64                { return math.Hypot(a.X, a.Y) }
func (a Vec2) LenSq() float64              { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Dist(b Vec2) float64         { return math.Hypot(a.X-b.X, a.Y-b.Y) }
func (a Vec2) IsZero() bool                { return a.X == 0 && a.Y == 0 }
func (a Vec2) Angle() float64              { return math.Atan2(a.Y, a.X) }
func (a Vec2) Right() Vec2                 { return Vec2{-a.Y, a.X} }
func (a Vec2) Lerp(b Vec2, t float64) Vec2 { return a.Add(b.Sub(a).Scale(t)) }

// Normalize returns the unit vector of a. Degenerate (near zero) vectors
// normalize to +X so callers never divide by zero.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l < 1e-6 {
		return Vec2{1, 0}
	}
	return Vec2{a.X / l, a.Y / l}
}

// FromAngle returns the unit vector for an angle in radians.
func FromAngle(rad float64) Vec2 { return Vec2{math.Cos(rad), math.Sin(rad)} }

// AABB is an axis-aligned box given by its top-left corner and size.
type AABB struct {
	X, Y, W, H float64
}

// BoxAround returns the w×h box centred on c.
func BoxAround(c Vec2, w, h float64) AABB {
	return AABB{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Intersects reports whether two boxes overlap with positive area.
func (r AABB) Intersects(o AABB) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Center returns the box centre.
func (r AABB) Center() Vec2 { return Vec2{r.X + r.W/2, r.Y + r.H/2} }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// compass8 names the 8-way direction from one point to another, with
// north pointing up the screen.
func compass8(from, to Vec2) string {
	d := to.Sub(from)
	if d.LenSq() < 1 {
		return "here"
	}
	a := math.Atan2(-d.Y, d.X)
	dirs := [8]string{"west", "south-west", "south", "south-east", "east", "north-east", "north", "north-west"}
	idx := int(math.Floor((a+math.Pi)/(2*math.Pi)*8+0.5)) & 7
	return dirs[idx]
}

const degToRad = math.Pi / 180

func acosDeg(c float64) float64 { return math.Acos(c) / degToRad }
