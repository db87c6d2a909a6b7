package service

import (
	"strings"

	"github.com/wricardo/gridworld/game/engine"
	"github.com/wricardo/gridworld/game/items"
)

// Cell characters of the text views
const (
	charObserver = "@"
	charAgent    = "A"
	charBlock    = "#"
	charPushable = "P"
	charDoor     = "D"
	charOpenDoor = "d"
	charSwitch   = "S"
	charGoal     = "G"
	charWater    = "~"
	charCrumb    = "*"
	charEmpty    = "."
)

// cellChar picks the character of the most important visible entity on loc
func cellChar(w *engine.World, loc engine.Location, observer string) string {
	best, rank := charEmpty, 0
	for _, e := range w.EntitiesAt(loc) {
		a := e.Attrs()
		if !a.Visible {
			continue
		}
		ch, r := entityChar(e, observer)
		if r > rank {
			best, rank = ch, r
		}
	}
	return best
}

func entityChar(e engine.Entity, observer string) (string, int) {
	switch v := e.(type) {
	case *items.Pushable:
		return charPushable, 7
	case *items.Block:
		return charBlock, 8
	case *items.Door:
		if v.Open {
			return charOpenDoor, 5
		}
		return charDoor, 6
	case *items.Switch:
		return charSwitch, 4
	case *items.Goal:
		return charGoal, 3
	case *items.Water:
		return charWater, 2
	case *items.Breadcrumb:
		return charCrumb, 1
	}
	if items.IsAgent(e) {
		if e.Attrs().ID == observer {
			return charObserver, 10
		}
		return charAgent, 9
	}
	return charEmpty, 0
}

// RenderMap draws the whole map, top row first. Up is +y, so the first
// line is the highest row.
func RenderMap(w *engine.World, observer string) []string {
	lines := make([]string, 0, w.Height())
	for y := w.Height() - 1; y >= 0; y-- {
		var row strings.Builder
		for x := 0; x < w.Width(); x++ {
			row.WriteString(cellChar(w, engine.Loc(x, y), observer))
		}
		lines = append(lines, row.String())
	}
	return lines
}

// LocalView draws the (2*radius+1)-square around center. Cells beyond the
// map edge are drawn as blocks.
func LocalView(w *engine.World, center engine.Location, radius int, observer string) []string {
	lines := make([]string, 0, 2*radius+1)
	for dy := radius; dy >= -radius; dy-- {
		var row strings.Builder
		for dx := -radius; dx <= radius; dx++ {
			loc := center.Add(dx, dy)
			if !w.InBounds(loc) {
				row.WriteString(charBlock)
				continue
			}
			row.WriteString(cellChar(w, loc, observer))
		}
		lines = append(lines, row.String())
	}
	return lines
}
