// Package viz renders a running column in the terminal.
//
// [Model] is a bubbletea model that advances a [sim.Driver] on every tick and
// draws the layers as a coloured column next to an asciigraph trace of their
// temperatures:
//
//	m := viz.NewModel(driver, cfg, initial, "heat-sink-column")
//	err := viz.Run(m)
//
// Colours run from blue (coldest layer seen) to red (hottest).
package viz
