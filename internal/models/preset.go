package models

// CatalogSources are the stream sources available in the reference
// deployment, in catalog order.
var CatalogSources = []string{
	"endoscope.mp4",
	"microscope.mp4",
	"ptz.mp4",
	"vital_signs.mp4",
}

// PresetNames lists the grid presets in display order.
var PresetNames = []string{"quad", "focus", "teaching", "clear"}

// PresetGrid returns the grid for a named preset. The focus preset pins the
// primary source, which is the first occupied slot of the current grid or the
// first catalog source when the grid is empty. Presets replace the grid
// wholesale, so focus may hold the primary source in two slots at once.
// Returns false for an unknown preset name.
func PresetGrid(name string, current Grid) (Grid, bool) {
	switch name {
	case "quad":
		next := EmptyGrid()
		copy(next, CatalogSources)
		return next, true
	case "focus":
		primary := CatalogSources[0]
		for _, src := range current {
			if src != "" {
				primary = src
				break
			}
		}
		return Grid{primary, primary, "vital_signs.mp4", ""}, true
	case "teaching":
		return Grid{"endoscope.mp4", "vital_signs.mp4", "ptz.mp4", ""}, true
	case "clear":
		return EmptyGrid(), true
	default:
		return nil, false
	}
}
