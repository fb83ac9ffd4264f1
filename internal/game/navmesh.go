package game

import "math"

// NavGrid is a walkability snapshot of a TileMap: one cell per tile,
// blocked unless the tile is Land.
type NavGrid struct {
	tm      *TileMap
	cols    int
	rows    int
	blocked []bool
}

// NewNavGrid builds the walkability grid for tm. Rebuild it if tiles change.
func NewNavGrid(tm *TileMap) *NavGrid {
	ng := &NavGrid{
		tm:      tm,
		cols:    tm.Cols,
		rows:    tm.Rows,
		blocked: make([]bool, tm.Cols*tm.Rows),
	}
	for r := 0; r < tm.Rows; r++ {
		for c := 0; c < tm.Cols; c++ {
			ng.blocked[r*tm.Cols+c] = !tm.IsNavigable(c, r)
		}
	}
	return ng
}

// IsBlocked returns true if the cell at (cx, cy) is not walkable.
func (ng *NavGrid) IsBlocked(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= ng.cols || cy >= ng.rows {
		return true
	}
	return ng.blocked[cy*ng.cols+cx]
}

// --- A* pathfinding ---

type openEntry struct {
	idx int
	f   float64
}

var dirs4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindPath returns cell-centre waypoints from the start cell to the goal cell
// inclusive. It returns false when either endpoint is blocked or the goal is
// unreachable.
//
// Moves are 4-connected with unit cost and a Euclidean heuristic. The open
// list is scanned linearly and the first entry with the strictly lowest f
// wins, so ties resolve by insertion order.
func (ng *NavGrid) FindPath(start, goal Vec2) ([]Vec2, bool) {
	scx, scy := ng.tm.WorldToCell(start)
	gcx, gcy := ng.tm.WorldToCell(goal)
	if ng.IsBlocked(scx, scy) || ng.IsBlocked(gcx, gcy) {
		return nil, false
	}

	n := ng.cols * ng.rows
	gScore := make([]float64, n)
	parent := make([]int, n)
	inOpen := make([]bool, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		parent[i] = -1
	}
	heuristic := func(cx, cy int) float64 {
		return math.Hypot(float64(cx-gcx), float64(cy-gcy))
	}

	startIdx := scy*ng.cols + scx
	goalIdx := gcy*ng.cols + gcx
	gScore[startIdx] = 0
	open := []openEntry{{idx: startIdx, f: heuristic(scx, scy)}}
	inOpen[startIdx] = true

	popBest := func() int {
		best := -1
		bestF := math.Inf(1)
		for i, e := range open {
			if e.f < bestF {
				bestF = e.f
				best = i
			}
		}
		if best < 0 {
			return -1
		}
		idx := open[best].idx
		open[best] = open[len(open)-1]
		open = open[:len(open)-1]
		inOpen[idx] = false
		return idx
	}

	found := false
	for len(open) > 0 {
		cur := popBest()
		if cur < 0 {
			break
		}
		if cur == goalIdx {
			found = true
			break
		}
		if closed[cur] {
			continue
		}
		closed[cur] = true

		cx, cy := cur%ng.cols, cur/ng.cols
		for _, d := range dirs4 {
			nx, ny := cx+d[0], cy+d[1]
			if ng.IsBlocked(nx, ny) {
				continue
			}
			ni := ny*ng.cols + nx
			if closed[ni] {
				continue
			}
			tentative := gScore[cur] + 1
			if tentative < gScore[ni] {
				gScore[ni] = tentative
				parent[ni] = cur
				f := tentative + heuristic(nx, ny)
				if !inOpen[ni] {
					open = append(open, openEntry{idx: ni, f: f})
					inOpen[ni] = true
					continue
				}
				for i := range open {
					if open[i].idx == ni {
						open[i].f = f
						break
					}
				}
			}
		}
	}
	if !found {
		return nil, false
	}
	return ng.buildPath(goalIdx, parent), true
}

func (ng *NavGrid) buildPath(goalIdx int, parent []int) []Vec2 {
	var rev []Vec2
	for cur := goalIdx; cur != -1; cur = parent[cur] {
		rev = append(rev, ng.tm.CellCenter(cur%ng.cols, cur/ng.cols))
	}
	path := make([]Vec2, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}
