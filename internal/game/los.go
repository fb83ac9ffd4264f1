package game

// losSamples is the number of interpolation points walked between the
// observer and the target.
const losSamples = 32

// HasLineOfSight walks evenly spaced samples from a to b and fails on the
// first Wall, Water or out-of-bounds cell. Trees and trunks do not block
// sight. The sample at t=0 (the observer's own cell) is skipped.
func HasLineOfSight(tm *TileMap, a, b Vec2) bool {
	for i := 1; i <= losSamples; i++ {
		p := a.Lerp(b, float64(i)/losSamples)
		cx, cy := tm.WorldToCell(p)
		if tm.Classify(cx, cy).blocksSight() {
			return false
		}
	}
	return true
}

// inViewCone reports whether p lies within range and within half the FOV
// of the facing direction.
func inViewCone(from, facing Vec2, viewRange, fovDeg float64, p Vec2) bool {
	d := p.Sub(from)
	dist := d.Len()
	if dist < 1e-3 || dist > viewRange {
		return false
	}
	cosA := clamp(facing.Normalize().Dot(d.Scale(1/dist)), -1, 1)
	return acosDeg(cosA) <= fovDeg/2
}

// canSeePoint combines the view cone with the line-of-sight walk.
func canSeePoint(tm *TileMap, from, facing Vec2, viewRange, fovDeg float64, p Vec2) bool {
	return inViewCone(from, facing, viewRange, fovDeg, p) && HasLineOfSight(tm, from, p)
}
