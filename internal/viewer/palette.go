package viewer

import (
	"image/color"

	"github.com/Garsondee/Pathfinders/internal/game"
)

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colBorder     = color.RGBA{R: 65, G: 90, B: 65, A: 255}
	colBullet     = color.RGBA{R: 255, G: 230, B: 150, A: 255}
	colFlash      = color.RGBA{R: 255, G: 200, B: 80, A: 220}
	colSound      = color.RGBA{R: 200, G: 200, B: 255, A: 60}
	colText       = color.RGBA{R: 220, G: 230, B: 220, A: 255}
	colDim        = color.RGBA{R: 140, G: 150, B: 140, A: 255}
	colEnemyPt    = color.RGBA{R: 255, G: 60, B: 60, A: 200}
	colCoverPt    = color.RGBA{R: 80, G: 200, B: 255, A: 200}
	colFlankPt    = color.RGBA{R: 255, G: 200, B: 0, A: 200}
	colScan       = color.RGBA{R: 200, G: 200, B: 80, A: 90}
	colTrunk      = color.RGBA{R: 90, G: 60, B: 35, A: 255}
)

func tileColor(k game.TileKind) color.RGBA {
	switch k {
	case game.TileWater:
		return color.RGBA{R: 40, G: 80, B: 140, A: 255}
	case game.TileWall:
		return color.RGBA{R: 95, G: 92, B: 85, A: 255}
	case game.TileTree:
		return color.RGBA{R: 30, G: 78, B: 38, A: 255}
	default:
		return color.RGBA{R: 58, G: 82, B: 48, A: 255}
	}
}

func factionColor(f game.Faction) color.RGBA {
	switch f {
	case game.FactionAllies:
		return color.RGBA{R: 90, G: 150, B: 230, A: 255}
	case game.FactionAxis:
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	case game.FactionMilitia:
		return color.RGBA{R: 220, G: 150, B: 60, A: 255}
	default:
		return color.RGBA{R: 120, G: 200, B: 110, A: 255}
	}
}

// faded returns c at the given alpha, premultiplied.
func faded(c color.RGBA, a uint8) color.RGBA {
	k := uint16(a)
	return color.RGBA{
		R: uint8(uint16(c.R) * k / 255),
		G: uint8(uint16(c.G) * k / 255),
		B: uint8(uint16(c.B) * k / 255),
		A: a,
	}
}
