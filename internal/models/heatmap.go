package models

// HeatmapCell is one day in a per-year 52x7 activity grid. Value is the 0-4
// display bucket, Count the raw accumulated contribution count.
type HeatmapCell struct {
	Week  int    `json:"week"`
	Day   int    `json:"day"`
	Value int    `json:"value"`
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// YearHeatmaps maps a year (as string, for stable JSON keys) to its 364 cells.
// Grids are derived data, rebuilt on every request.
type YearHeatmaps map[string][]HeatmapCell
