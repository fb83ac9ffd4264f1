package game

import "fmt"

// TileKind classifies a single grid cell.
type TileKind uint8

const (
	TileLand  TileKind = iota // open ground, walkable
	TileWater                 // blocks movement and sight
	TileWall                  // blocks movement and sight, counts as cover
	TileTree                  // foliage: not navigable, does not block sight
)

func (k TileKind) String() string {
	switch k {
	case TileLand:
		return "land"
	case TileWater:
		return "water"
	case TileWall:
		return "wall"
	case TileTree:
		return "tree"
	default:
		return "unknown"
	}
}

// Glyph returns the ASCII character used for this kind in map rows.
func (k TileKind) Glyph() byte {
	switch k {
	case TileWater:
		return '~'
	case TileWall:
		return '#'
	case TileTree:
		return 'T'
	default:
		return '.'
	}
}

// blocksSight reports whether the kind stops line-of-sight samples.
func (k TileKind) blocksSight() bool { return k == TileWall || k == TileWater }

// solid reports whether the kind stops bodies and bullets.
func (k TileKind) solid() bool { return k == TileWall || k == TileWater }

// Trunk is a narrow tree trunk obstacle. Its collision footprint is the
// square of side Dia centred on Center.
type Trunk struct {
	Center Vec2    `json:"center"`
	Dia    float64 `json:"dia"`
}

func (t Trunk) box() AABB { return BoxAround(t.Center, t.Dia, t.Dia) }

// TileMap is the battlefield grid. Cells outside the grid classify as Wall.
type TileMap struct {
	Cols     int
	Rows     int
	TileSize float64
	tiles    []TileKind
	trunks   []Trunk
}

// NewTileMap creates a cols×rows map of open land.
func NewTileMap(cols, rows int, tileSize float64) *TileMap {
	return &TileMap{
		Cols:     cols,
		Rows:     rows,
		TileSize: tileSize,
		tiles:    make([]TileKind, cols*rows),
	}
}

// ParseTileRows builds a map from ASCII rows: '.' land, '~' water, '#' wall,
// 'T' tree, 't' tree with a trunk obstacle at the cell centre. All rows must
// have the same width.
func ParseTileRows(rows []string, tileSize float64) (*TileMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("tilemap: no rows")
	}
	cols := len(rows[0])
	tm := NewTileMap(cols, len(rows), tileSize)
	for r, line := range rows {
		if len(line) != cols {
			return nil, fmt.Errorf("tilemap: row %d has width %d, want %d", r, len(line), cols)
		}
		for c := 0; c < cols; c++ {
			switch line[c] {
			case '.', ' ':
				tm.Set(c, r, TileLand)
			case '~':
				tm.Set(c, r, TileWater)
			case '#':
				tm.Set(c, r, TileWall)
			case 'T':
				tm.Set(c, r, TileTree)
			case 't':
				tm.Set(c, r, TileTree)
				tm.AddTrunk(tm.CellCenter(c, r), tileSize*0.3)
			default:
				return nil, fmt.Errorf("tilemap: unknown glyph %q at (%d,%d)", line[c], c, r)
			}
		}
	}
	return tm, nil
}

// InBounds reports whether (col,row) lies inside the grid.
func (tm *TileMap) InBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < tm.Cols && row < tm.Rows
}

// Classify returns the kind at (col,row); out of bounds is Wall.
func (tm *TileMap) Classify(col, row int) TileKind {
	if !tm.InBounds(col, row) {
		return TileWall
	}
	return tm.tiles[row*tm.Cols+col]
}

// Set overwrites one cell. Out of bounds writes are ignored.
func (tm *TileMap) Set(col, row int, k TileKind) {
	if !tm.InBounds(col, row) {
		return
	}
	tm.tiles[row*tm.Cols+col] = k
}

// Fill sets every cell in the inclusive rectangle.
func (tm *TileMap) Fill(c0, r0, c1, r1 int, k TileKind) {
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			tm.Set(c, r, k)
		}
	}
}

// IsNavigable is true only for in-bounds Land.
func (tm *TileMap) IsNavigable(col, row int) bool {
	return tm.Classify(col, row) == TileLand
}

// AddTrunk registers a trunk obstacle.
func (tm *TileMap) AddTrunk(center Vec2, dia float64) {
	tm.trunks = append(tm.trunks, Trunk{Center: center, Dia: dia})
}

// Trunks returns the trunk obstacles.
func (tm *TileMap) Trunks() []Trunk { return tm.trunks }

// Tiles returns a copy of the raw tile array in row-major order.
func (tm *TileMap) Tiles() []TileKind {
	out := make([]TileKind, len(tm.tiles))
	copy(out, tm.tiles)
	return out
}

// RowsASCII returns the map as ASCII rows, the inverse of ParseTileRows except
// that trunk cells come back as plain trees.
func (tm *TileMap) RowsASCII() []string {
	out := make([]string, tm.Rows)
	buf := make([]byte, tm.Cols)
	for r := 0; r < tm.Rows; r++ {
		for c := 0; c < tm.Cols; c++ {
			buf[c] = tm.Classify(c, r).Glyph()
		}
		out[r] = string(buf)
	}
	return out
}

// WorldToCell converts a world point to the containing cell.
func (tm *TileMap) WorldToCell(p Vec2) (int, int) {
	return floorDiv(p.X, tm.TileSize), floorDiv(p.Y, tm.TileSize)
}

// CellCenter returns the world centre of a cell.
func (tm *TileMap) CellCenter(col, row int) Vec2 {
	return Vec2{
		X: float64(col)*tm.TileSize + tm.TileSize/2,
		Y: float64(row)*tm.TileSize + tm.TileSize/2,
	}
}

// KindAt classifies the cell containing a world point.
func (tm *TileMap) KindAt(p Vec2) TileKind {
	c, r := tm.WorldToCell(p)
	return tm.Classify(c, r)
}

// WorldSize returns the map extent in pixels.
func (tm *TileMap) WorldSize() (float64, float64) {
	return float64(tm.Cols) * tm.TileSize, float64(tm.Rows) * tm.TileSize
}

// Collides reports whether box overlaps any Water/Wall cell, any cell
// outside the grid, or any trunk footprint.
func (tm *TileMap) Collides(box AABB) bool {
	c0 := floorDiv(box.X, tm.TileSize)
	r0 := floorDiv(box.Y, tm.TileSize)
	c1 := floorDiv(box.X+box.W, tm.TileSize)
	r1 := floorDiv(box.Y+box.H, tm.TileSize)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if !tm.InBounds(c, r) || tm.Classify(c, r).solid() {
				return true
			}
		}
	}
	for _, t := range tm.trunks {
		if t.box().Intersects(box) {
			return true
		}
	}
	return false
}

func floorDiv(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}
