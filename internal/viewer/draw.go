package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Draw renders the battlefield, HUD and thought log.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	snap := v.world.Snapshot()

	v.drawTiles(screen)
	v.drawCorpses(screen, snap.Corpses)
	if v.showDebug {
		v.drawSounds(screen, snap.Sounds)
		v.drawSquadDebug(screen, snap.Squads)
	}
	for _, c := range snap.Combatants {
		v.drawCombatant(screen, c)
	}
	if snap.Player != nil {
		v.drawCombatant(screen, *snap.Player)
	}
	v.drawBullets(screen, snap.Bullets)
	v.drawFlashes(screen)
	v.drawBarks(screen, snap.Barks)

	ww, wh := v.world.TileMap().WorldSize()
	vector.StrokeRect(screen, borderWidth-1, borderWidth-1, float32(ww)+2, float32(wh)+2, 2, colBorder, false)

	v.drawHUD(screen, snap)
	v.drawThoughts(screen, borderWidth*2+int(ww), v.height)
}

func (v *Viewer) print(dst *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, v.face, op)
}

func (v *Viewer) drawTiles(screen *ebiten.Image) {
	tm := v.world.TileMap()
	ts := float32(tm.TileSize * v.cam.zoom)
	for r := 0; r < tm.Rows; r++ {
		for c := 0; c < tm.Cols; c++ {
			x, y := v.cam.toScreen(game.V(float64(c)*tm.TileSize, float64(r)*tm.TileSize))
			vector.FillRect(screen, x, y, ts, ts, tileColor(tm.Classify(c, r)), false)
		}
	}
	for _, t := range tm.Trunks() {
		x, y := v.cam.toScreen(t.Center)
		vector.FillCircle(screen, x, y, float32(t.Dia/2*v.cam.zoom), colTrunk, true)
	}
}

func (v *Viewer) drawCorpses(screen *ebiten.Image, corpses []game.Corpse) {
	for _, c := range corpses {
		x, y := v.cam.toScreen(c.Pos)
		col := faded(factionColor(c.Faction), 110)
		vector.StrokeLine(screen, x-5, y-5, x+5, y+5, 2, col, true)
		vector.StrokeLine(screen, x-5, y+5, x+5, y-5, 2, col, true)
	}
}

func (v *Viewer) drawSounds(screen *ebiten.Image, sounds []game.SoundPing) {
	for _, p := range sounds {
		x, y := v.cam.toScreen(p.Pos)
		vector.StrokeCircle(screen, x, y, float32(p.Radius*v.cam.zoom), 1, colSound, true)
	}
}

func (v *Viewer) drawSquadDebug(screen *ebiten.Image, squads []game.SquadView) {
	mark := func(p game.Vec2, c color.RGBA) {
		x, y := v.cam.toScreen(p)
		vector.StrokeRect(screen, x-4, y-4, 8, 8, 1.5, c, false)
	}
	for _, sq := range squads {
		if sq.Alive == 0 {
			continue
		}
		if sq.Debug.HasEnemy {
			mark(sq.Debug.EnemyPos, colEnemyPt)
		}
		if sq.Debug.HasCover {
			mark(sq.Debug.CoverPos, colCoverPt)
		}
		if sq.Debug.HasFlank {
			mark(sq.Debug.FlankPos, colFlankPt)
		}
		if sq.Scanning {
			x, y := v.cam.toScreen(sq.ScanCenter)
			vector.StrokeCircle(screen, x, y, float32(sq.ScanRadius*v.cam.zoom), 1, colScan, true)
		}
	}
}

func (v *Viewer) drawCombatant(screen *ebiten.Image, c game.CombatantView) {
	if c.State == "dead" {
		return
	}
	x, y := v.cam.toScreen(c.Pos)
	col := factionColor(c.Faction)
	size := float32(v.world.Config().PawnSize * v.cam.zoom)
	vector.FillRect(screen, x-size/2, y-size/2, size, size, col, false)
	if c.Player {
		vector.StrokeRect(screen, x-size/2-2, y-size/2-2, size+4, size+4, 1.5, colText, false)
	}
	if c.Leader {
		vector.FillCircle(screen, x, y-size/2-4, 2, colText, true)
	}
	fx, fy := float32(c.Facing.X), float32(c.Facing.Y)
	vector.StrokeLine(screen, x, y, x+fx*size, y+fy*size, 1.5, colText, true)

	if c.RecentlyHit {
		vector.StrokeCircle(screen, x, y, size, 1, colEnemyPt, true)
	}
	if v.showDebug {
		if c.HasOrder {
			ox, oy := v.cam.toScreen(c.OrderPos)
			vector.StrokeLine(screen, x, y, ox, oy, 1, faded(col, 70), false)
		}
		label := c.Label
		if !c.Player {
			label += " " + c.State
		}
		v.print(screen, label, int(x)+int(size), int(y)-int(size), colDim)
	}
}

func (v *Viewer) drawBullets(screen *ebiten.Image, bullets []game.Bullet) {
	for _, b := range bullets {
		x, y := v.cam.toScreen(b.Pos)
		tail := b.Dir.Scale(-6 * v.cam.zoom)
		vector.StrokeLine(screen, x, y, x+float32(tail.X), y+float32(tail.Y), 1, colBullet, true)
	}
}

func (v *Viewer) drawFlashes(screen *ebiten.Image) {
	for _, f := range v.world.Flashes() {
		x, y := v.cam.toScreen(f.Pos)
		dx, dy := float32(math.Cos(f.Angle)*10), float32(math.Sin(f.Angle)*10)
		vector.StrokeLine(screen, x, y, x+dx, y+dy, 3, colFlash, true)
	}
}

func (v *Viewer) drawBarks(screen *ebiten.Image, barks []game.Bark) {
	for _, b := range barks {
		x, y := v.cam.toScreen(b.Pos)
		w, _ := text.Measure(b.Text, v.face, 0)
		a := uint8(255 * min(1, b.TTL))
		vector.FillRect(screen, x-float32(w)/2-3, y-30, float32(w)+6, 15, faded(colBackground, a/2+40), false)
		v.print(screen, b.Text, int(x-float32(w)/2), int(y)-29, faded(colText, a))
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image, snap game.Snapshot) {
	speed := fmt.Sprintf("%.1fx", v.simSpeed)
	if v.simSpeed == 0 {
		speed = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("T+%.1fs  %s  alarm %d/5  %s", snap.Clock, speed, snap.Alarm, snap.Outcome),
		fmt.Sprintf("shots %d  hits %d  kills %d", snap.Counters.ShotsFired, snap.Counters.ShotsHit, snap.Counters.EnemiesKilled),
	}
	if p := snap.Player; p != nil {
		ammo := fmt.Sprintf("%d/%d", p.Mag, p.Reserve)
		if p.Reloading {
			ammo = "reloading"
		}
		lines = append(lines, fmt.Sprintf("hp %d/%d  %s %s", p.HP, p.MaxHP, p.Weapon, ammo))
	}
	lines = append(lines, "WASD move  Shift sprint  C sneak  R reload  LMB fire")
	lines = append(lines, "F1 copy debrief  F5 reload map  P pause  ,/. speed  Tab debug")
	if v.statusTimer > 0 {
		lines = append(lines, v.status)
	}

	const lineH, padX, padY = 14, 6, 4
	boxW := float32(0)
	for _, l := range lines {
		w, _ := text.Measure(l, v.face, 0)
		boxW = max(boxW, float32(w))
	}
	boxW += padX * 2
	boxH := float32(len(lines)*lineH + padY*2)
	bx, by := float32(borderWidth+4), float32(v.height-borderWidth-4)-boxH

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1, colBorder, false)
	for i, l := range lines {
		v.print(screen, l, int(bx)+padX, int(by)+padY+i*lineH, colText)
	}
}
