package viewer

import (
	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

// controls is one frame of raw input, already mapped to actions.
type controls struct {
	up, down, left, right bool
	sprint, sneak         bool
	fire, reload          bool
	cursorX, cursorY      int

	// Edge-triggered keys.
	copyDebrief bool
	reloadMap   bool
	pause       bool
	slower      bool
	faster      bool
	toggleDebug bool
}

var edgeKeys = []ebiten.Key{ebiten.KeyF1, ebiten.KeyF5, ebiten.KeyP, ebiten.KeyComma, ebiten.KeyPeriod, ebiten.KeyTab}

// readControls samples the keyboard and mouse. prev holds last frame's
// edge-key state and is updated in place.
func readControls(prev map[ebiten.Key]bool) controls {
	pressed := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				return true
			}
		}
		return false
	}
	now := map[ebiten.Key]bool{}
	for _, k := range edgeKeys {
		now[k] = ebiten.IsKeyPressed(k)
	}
	edge := func(k ebiten.Key) bool { return now[k] && !prev[k] }

	mx, my := ebiten.CursorPosition()
	c := controls{
		up:          pressed(ebiten.KeyW, ebiten.KeyArrowUp),
		down:        pressed(ebiten.KeyS, ebiten.KeyArrowDown),
		left:        pressed(ebiten.KeyA, ebiten.KeyArrowLeft),
		right:       pressed(ebiten.KeyD, ebiten.KeyArrowRight),
		sprint:      pressed(ebiten.KeyShiftLeft, ebiten.KeyShiftRight),
		sneak:       pressed(ebiten.KeyC),
		reload:      pressed(ebiten.KeyR),
		fire:        ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		cursorX:     mx,
		cursorY:     my,
		copyDebrief: edge(ebiten.KeyF1),
		reloadMap:   edge(ebiten.KeyF5),
		pause:       edge(ebiten.KeyP),
		slower:      edge(ebiten.KeyComma),
		faster:      edge(ebiten.KeyPeriod),
		toggleDebug: edge(ebiten.KeyTab),
	}
	for k, v := range now {
		prev[k] = v
	}
	return c
}

// playerInput converts controls into the world's per-tick input. Sneak
// wins over sprint when both are held.
func playerInput(c controls, cam camera) game.PlayerInput {
	var move game.Vec2
	if c.up {
		move.Y--
	}
	if c.down {
		move.Y++
	}
	if c.left {
		move.X--
	}
	if c.right {
		move.X++
	}
	return game.PlayerInput{
		Move:   move,
		Aim:    cam.toWorld(c.cursorX, c.cursorY),
		Fire:   c.fire,
		Sprint: c.sprint && !c.sneak,
		Sneak:  c.sneak,
		Reload: c.reload,
	}
}

// camera maps world pixels onto the screen: the battlefield is drawn at
// (offX, offY) and scaled by zoom.
type camera struct {
	offX, offY float64
	zoom       float64
}

func (c camera) toWorld(sx, sy int) game.Vec2 {
	z := c.zoom
	if z <= 0 {
		z = 1
	}
	return game.V((float64(sx)-c.offX)/z, (float64(sy)-c.offY)/z)
}

func (c camera) toScreen(p game.Vec2) (float32, float32) {
	return float32(c.offX + p.X*c.zoom), float32(c.offY + p.Y*c.zoom)
}

// simSpeeds are the selectable multipliers; index 0 is paused.
var simSpeeds = []float64{0, 0.5, 1, 2, 4}

func slower(cur float64) float64 {
	for i := len(simSpeeds) - 1; i > 0; i-- {
		if simSpeeds[i] <= cur {
			return simSpeeds[i-1]
		}
	}
	return simSpeeds[0]
}

func faster(cur float64) float64 {
	for _, s := range simSpeeds {
		if s > cur {
			return s
		}
	}
	return simSpeeds[len(simSpeeds)-1]
}
