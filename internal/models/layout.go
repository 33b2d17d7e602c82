package models

import (
	"fmt"

	"github.com/medigrid/layoutsync/pkg/api"
)

// PanelCount is the fixed number of display slots in the reference deployment.
const PanelCount = 4

// Grid is the local representation of a layout: one source id per slot,
// empty string for a vacant slot. A source occupies at most one slot.
type Grid []string

// EmptyGrid returns a grid with all slots vacant.
func EmptyGrid() Grid {
	return make(Grid, PanelCount)
}

// Clone returns an independent copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	copy(out, g)
	return out
}

// Equal reports whether two grids hold the same sources in the same slots.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Assign places source into slot and vacates any slot the source previously
// occupied, preserving the one-slot-per-source invariant. Returns a new grid.
func (g Grid) Assign(slot int, source string) Grid {
	next := g.Clone()
	if slot < 0 || slot >= len(next) || source == "" {
		return next
	}
	for i, s := range next {
		if s == source && i != slot {
			next[i] = ""
		}
	}
	next[slot] = source
	return next
}

// Clear vacates a slot. Returns a new grid.
func (g Grid) Clear(slot int) Grid {
	next := g.Clone()
	if slot >= 0 && slot < len(next) {
		next[slot] = ""
	}
	return next
}

// Swap exchanges the contents of two slots. Returns a new grid.
func (g Grid) Swap(a, b int) Grid {
	next := g.Clone()
	if a < 0 || a >= len(next) || b < 0 || b >= len(next) || a == b {
		return next
	}
	next[a], next[b] = next[b], next[a]
	return next
}

// ToLayout converts the grid to its wire form. Slots are named p1..pN and
// vacant slots carry a null streamId.
func (g Grid) ToLayout() api.Layout {
	panels := make([]api.Panel, len(g))
	for i, src := range g {
		panels[i] = api.Panel{ID: fmt.Sprintf("p%d", i+1)}
		if src != "" {
			s := src
			panels[i].StreamID = &s
		}
	}
	return api.Layout{Panels: panels}
}

// GridFromLayout converts a wire layout back to a grid. Panels are matched by
// their p1..pN ids; unknown or missing panels leave the slot vacant.
func GridFromLayout(layout api.Layout) Grid {
	byID := make(map[string]*string, len(layout.Panels))
	for _, p := range layout.Panels {
		byID[p.ID] = p.StreamID
	}
	grid := EmptyGrid()
	for i := range grid {
		if streamID, ok := byID[fmt.Sprintf("p%d", i+1)]; ok && streamID != nil {
			grid[i] = *streamID
		}
	}
	return grid
}

// DefaultLayout is the authority's layout before any publish: all slots
// vacant, version 0.
func DefaultLayout() api.Layout {
	return EmptyGrid().ToLayout()
}
