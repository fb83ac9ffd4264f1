// Package viewer is the interactive ebiten front end: it turns keyboard and
// mouse input into player input, steps the world at a fixed rate and draws
// the battlefield.
package viewer

import (
	"fmt"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"
)

const (
	borderWidth   = 16
	statusSeconds = 3.0
)

// Options configures a Viewer.
type Options struct {
	// Build creates a fresh world. It is called once by New and again on
	// every reload.
	Build func() (*game.World, error)
	// Dt is the fixed step in seconds; zero means 1/60.
	Dt float64
	// Reloads delivers a value whenever the scenario source changed.
	Reloads <-chan string
	Log     zerolog.Logger
	// Clipboard receives the debrief on F1; nil uses the system clipboard.
	Clipboard func(string) error
}

// Viewer implements ebiten.Game.
type Viewer struct {
	opts  Options
	world *game.World
	face  text.Face

	prevKeys  map[ebiten.Key]bool
	simSpeed  float64
	tickAccum float64
	showDebug bool

	status      string
	statusTimer float64

	cam           camera
	width, height int
}

// New builds the first world and sizes the window around it.
func New(opts Options) (*Viewer, error) {
	if opts.Build == nil {
		return nil, fmt.Errorf("viewer: no world builder")
	}
	if opts.Dt <= 0 {
		opts.Dt = 1.0 / 60
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	w, err := opts.Build()
	if err != nil {
		return nil, fmt.Errorf("viewer: build world: %w", err)
	}
	v := &Viewer{
		opts:      opts,
		face:      text.NewGoXFace(basicfont.Face7x13),
		prevKeys:  map[ebiten.Key]bool{},
		simSpeed:  1,
		showDebug: true,
		cam:       camera{offX: borderWidth, offY: borderWidth, zoom: 1},
	}
	v.setWorld(w)
	return v, nil
}

func (v *Viewer) setWorld(w *game.World) {
	v.world = w
	ww, wh := w.TileMap().WorldSize()
	v.width = borderWidth*2 + int(ww) + logPanelWidth
	v.height = borderWidth*2 + int(wh)
}

// WindowSize is the natural window size for the current world.
func (v *Viewer) WindowSize() (int, int) { return v.width, v.height }

// World returns the world currently shown.
func (v *Viewer) World() *game.World { return v.world }

// Update reads input and advances the simulation.
func (v *Viewer) Update() error {
	v.step(readControls(v.prevKeys))
	return nil
}

// step applies one frame of controls; split from Update so it can run
// without a window.
func (v *Viewer) step(c controls) {
	v.pollReload(c.reloadMap)
	v.statusTimer = max(0, v.statusTimer-1.0/60)

	switch {
	case c.pause && v.simSpeed > 0:
		v.simSpeed = 0
	case c.pause:
		v.simSpeed = 1
	case c.slower:
		v.simSpeed = slower(v.simSpeed)
	case c.faster:
		v.simSpeed = faster(v.simSpeed)
	}
	if c.toggleDebug {
		v.showDebug = !v.showDebug
	}
	if c.copyDebrief {
		v.copyDebrief()
	}

	in := playerInput(c, v.cam)
	v.tickAccum += v.simSpeed
	for v.tickAccum >= 1 {
		v.tickAccum--
		v.world.Step(v.opts.Dt, in)
		// Fire and reload act once per frame, not once per sub-step.
		in.Fire, in.Reload = false, false
	}
}

// pollReload swaps in a freshly built world when the watched scenario
// changed or a manual reload was requested. A failed build keeps the
// current world.
func (v *Viewer) pollReload(manual bool) {
	changed := manual
	if !changed && v.opts.Reloads != nil {
		select {
		case _, ok := <-v.opts.Reloads:
			changed = ok
		default:
		}
	}
	if !changed {
		return
	}
	w, err := v.opts.Build()
	if err != nil {
		v.opts.Log.Error().Err(err).Msg("scenario reload failed")
		v.setStatus("reload failed: " + err.Error())
		return
	}
	v.setWorld(w)
	v.opts.Log.Info().Int("combatants", len(w.Soldiers())).Msg("scenario reloaded")
	v.setStatus("scenario reloaded")
}

func (v *Viewer) copyDebrief() {
	if err := v.opts.Clipboard(v.world.DebriefReport()); err != nil {
		v.opts.Log.Warn().Err(err).Msg("clipboard copy failed")
		v.setStatus("clipboard unavailable")
		return
	}
	v.setStatus("debrief copied to clipboard")
}

func (v *Viewer) setStatus(s string) {
	v.status = s
	v.statusTimer = statusSeconds
}

// Layout keeps a fixed logical resolution.
func (v *Viewer) Layout(_, _ int) (int, int) { return v.width, v.height }
