package game

import "testing"

func pathCells(tm *TileMap, path []Vec2) [][2]int {
	out := make([][2]int, len(path))
	for i, p := range path {
		c, r := tm.WorldToCell(p)
		out[i] = [2]int{c, r}
	}
	return out
}

func assertContiguous(t *testing.T, tm *TileMap, path []Vec2) {
	t.Helper()
	cells := pathCells(tm, path)
	for i := 1; i < len(cells); i++ {
		dc := cells[i][0] - cells[i-1][0]
		dr := cells[i][1] - cells[i-1][1]
		if abs(dc)+abs(dr) != 1 {
			t.Fatalf("step %d: %v -> %v is not a 4-connected move", i, cells[i-1], cells[i])
		}
		if !tm.IsNavigable(cells[i][0], cells[i][1]) {
			t.Fatalf("waypoint %d on blocked cell %v", i, cells[i])
		}
	}
}

func TestFindPath_StraightLine(t *testing.T) {
	tm := NewTileMap(10, 5, 32)
	ng := NewNavGrid(tm)
	path, ok := ng.FindPath(tm.CellCenter(1, 2), tm.CellCenter(8, 2))
	if !ok {
		t.Fatal("expected a path on open ground")
	}
	if len(path) != 8 {
		t.Fatalf("expected 8 waypoints, got %d", len(path))
	}
	if path[0] != tm.CellCenter(1, 2) || path[len(path)-1] != tm.CellCenter(8, 2) {
		t.Fatalf("path endpoints %v..%v are not the start and goal cell centres", path[0], path[len(path)-1])
	}
}

func TestFindPath_ShortestAroundWall(t *testing.T) {
	tm, err := ParseTileRows([]string{
		".......",
		"...#...",
		"...#...",
		"...#...",
		".......",
	}, 32)
	if err != nil {
		t.Fatal(err)
	}
	ng := NewNavGrid(tm)
	start, goal := tm.CellCenter(1, 2), tm.CellCenter(5, 2)
	path, ok := ng.FindPath(start, goal)
	if !ok {
		t.Fatal("expected a path around the wall")
	}
	assertContiguous(t, tm, path)
	// Manhattan 4 plus a detour of 2 rows up and back down.
	if steps := len(path) - 1; steps != 8 {
		t.Fatalf("expected shortest 4-connected length 8, got %d", steps)
	}
	sc, sr := tm.WorldToCell(path[0])
	gc, gr := tm.WorldToCell(path[len(path)-1])
	if sc != 1 || sr != 2 || gc != 5 || gr != 2 {
		t.Fatalf("endpoints (%d,%d)->(%d,%d)", sc, sr, gc, gr)
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	tm := NewTileMap(3, 3, 32)
	path, ok := NewNavGrid(tm).FindPath(V(40, 40), V(50, 50))
	if !ok || len(path) != 1 {
		t.Fatalf("expected a single-waypoint path, got ok=%v len=%d", ok, len(path))
	}
}

func TestFindPath_DisconnectedFails(t *testing.T) {
	tm, err := ParseTileRows([]string{
		"..~..",
		"..~..",
		"..#..",
	}, 32)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := NewNavGrid(tm).FindPath(tm.CellCenter(0, 0), tm.CellCenter(4, 2)); ok {
		t.Fatal("expected failure across a full water/wall barrier")
	}
}

func TestFindPath_BlockedEndpointFails(t *testing.T) {
	tm, err := ParseTileRows([]string{"..T.."}, 32)
	if err != nil {
		t.Fatal(err)
	}
	ng := NewNavGrid(tm)
	if _, ok := ng.FindPath(tm.CellCenter(0, 0), tm.CellCenter(2, 0)); ok {
		t.Fatal("goal on a tree cell should fail")
	}
	if _, ok := ng.FindPath(V(-10, 10), tm.CellCenter(4, 0)); ok {
		t.Fatal("start outside the grid should fail")
	}
}

func TestFindPath_MatchesManhattanOnOpenGround(t *testing.T) {
	tm := NewTileMap(12, 12, 16)
	ng := NewNavGrid(tm)
	rng := NewRand(7)
	for i := 0; i < 20; i++ {
		c0, r0 := rng.Intn(12), rng.Intn(12)
		c1, r1 := rng.Intn(12), rng.Intn(12)
		path, ok := ng.FindPath(tm.CellCenter(c0, r0), tm.CellCenter(c1, r1))
		if !ok {
			t.Fatalf("no path (%d,%d)->(%d,%d)", c0, r0, c1, r1)
		}
		want := abs(c1-c0) + abs(r1-r0)
		if got := len(path) - 1; got != want {
			t.Fatalf("(%d,%d)->(%d,%d): length %d, want %d", c0, r0, c1, r1, got, want)
		}
		assertContiguous(t, tm, path)
	}
}

func TestNavGrid_OOB_IsBlocked(t *testing.T) {
	ng := NewNavGrid(NewTileMap(4, 4, 32))
	if !ng.IsBlocked(-1, 0) || !ng.IsBlocked(0, -1) || !ng.IsBlocked(4, 0) {
		t.Fatal("out-of-bounds cells should be blocked")
	}
	if ng.IsBlocked(0, 0) {
		t.Fatal("open land should not be blocked")
	}
}

func TestBuildPath_FailureKeepsPreviousPath(t *testing.T) {
	ts := NewTestSim(WithTiles(
		"......",
		"......",
		"....##",
		"....#.",
	))
	w := ts.World
	s := newSoldier(&w.cfg, FactionAxis, w.tm.CellCenter(0, 0))
	prev := []Vec2{w.tm.CellCenter(0, 0), w.tm.CellCenter(1, 0)}
	s.path, s.pathIndex = prev, 1
	if w.buildPath(s, w.tm.CellCenter(5, 3)) {
		t.Fatal("enclosed goal should not be reachable")
	}
	if len(s.path) != 2 || s.pathIndex != 1 {
		t.Fatalf("previous path was modified: len=%d idx=%d", len(s.path), s.pathIndex)
	}
	if !w.buildPath(s, w.tm.CellCenter(3, 0)) || s.pathIndex != 0 {
		t.Fatal("reachable goal should replace the path and rewind the cursor")
	}
}
