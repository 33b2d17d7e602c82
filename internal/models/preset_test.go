package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetQuadFillsCatalog(t *testing.T) {
	grid, ok := PresetGrid("quad", EmptyGrid())
	require.True(t, ok)
	assert.Equal(t, Grid(CatalogSources), grid)
}

func TestPresetFocusPinsFirstOccupiedSource(t *testing.T) {
	current := EmptyGrid().Assign(1, "microscope.mp4").Assign(3, "ptz.mp4")
	grid, ok := PresetGrid("focus", current)
	require.True(t, ok)
	assert.Equal(t, Grid{"microscope.mp4", "microscope.mp4", "vital_signs.mp4", ""}, grid)
}

func TestPresetFocusFallsBackOnEmptyGrid(t *testing.T) {
	grid, ok := PresetGrid("focus", EmptyGrid())
	require.True(t, ok)
	assert.Equal(t, Grid{"endoscope.mp4", "endoscope.mp4", "vital_signs.mp4", ""}, grid)
}

func TestPresetTeaching(t *testing.T) {
	grid, ok := PresetGrid("teaching", EmptyGrid())
	require.True(t, ok)
	assert.Equal(t, Grid{"endoscope.mp4", "vital_signs.mp4", "ptz.mp4", ""}, grid)
}

func TestPresetClearVacatesAllSlots(t *testing.T) {
	current, _ := PresetGrid("quad", EmptyGrid())
	grid, ok := PresetGrid("clear", current)
	require.True(t, ok)
	assert.True(t, grid.Equal(EmptyGrid()))
}

func TestPresetUnknownName(t *testing.T) {
	_, ok := PresetGrid("mosaic", EmptyGrid())
	assert.False(t, ok)
}
