package viewer

import (
	"fmt"

	"github.com/Garsondee/Pathfinders/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logLineHeight = 14
	logHighlight  = 3 // newest entries drawn with a highlight row
)

// visibleThoughts returns the newest entries that fit in a panel of height
// panelH, oldest first.
func visibleThoughts(entries []game.ThoughtEntry, panelH int) []game.ThoughtEntry {
	maxVisible := max(0, (panelH-24)/logLineHeight)
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	return entries
}

// drawThoughts renders the thought log as a side panel starting at panelX.
func (v *Viewer) drawThoughts(screen *ebiten.Image, panelX, panelH int) {
	x := float32(panelX)
	vector.FillRect(screen, x, 0, logPanelWidth, float32(panelH), faded(colBackground, 248), false)
	vector.StrokeLine(screen, x, 0, x, float32(panelH), 1, colBorder, false)
	vector.FillRect(screen, x, 0, logPanelWidth, 16, faded(colBorder, 120), false)
	v.print(screen, "THOUGHT LOG", panelX+8, 2, colText)

	visible := visibleThoughts(v.world.Thoughts().Recent(), panelH)
	y := 20
	for i, e := range visible {
		recent := i >= len(visible)-logHighlight
		if recent {
			vector.FillRect(screen, x+2, float32(y), logPanelWidth-4, logLineHeight, faded(colBorder, 70), false)
		}
		vector.FillRect(screen, x+5, float32(y+4), 3, 6, factionColor(e.Faction), false)
		c := colDim
		if recent {
			c = colText
		}
		v.print(screen, fmt.Sprintf("%5d %-3s %s", e.Tick, e.Label, e.Message), panelX+12, y, c)
		y += logLineHeight
	}
}
