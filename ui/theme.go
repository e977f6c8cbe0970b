package ui

import "github.com/charmbracelet/lipgloss"

// Rosé Pine Moon palette
// https://rosepinetheme.com/palette/
var (
	ColorBase    = lipgloss.Color("#232136")
	ColorSurface = lipgloss.Color("#2a273f")
	ColorOverlay = lipgloss.Color("#393552")
	ColorMuted   = lipgloss.Color("#6e6a86")
	ColorSubtle  = lipgloss.Color("#908caa")
	ColorText    = lipgloss.Color("#e0def4")

	ColorLove = lipgloss.Color("#eb6f92") // error, closed, failed pipeline
	ColorGold = lipgloss.Color("#f6c177") // pending, draft
	ColorRose = lipgloss.Color("#ea9a97") // review requested
	ColorPine = lipgloss.Color("#3e8fb0") // link
	ColorFoam = lipgloss.Color("#9ccfd8") // success, merged, approved
	ColorIris = lipgloss.Color("#c4a7e7") // highlight, primary

	// Gradient endpoints for the panel title and the focused tab label
	GradientStart = "#9ccfd8" // foam
	GradientEnd   = "#c4a7e7" // iris
)

// PipelineColor maps a merge request pipeline status to a palette color.
func PipelineColor(status string) lipgloss.Color {
	switch status {
	case "success":
		return ColorFoam
	case "failed", "canceled":
		return ColorLove
	case "running", "pending", "created", "waiting_for_resource", "preparing":
		return ColorGold
	case "":
		return ColorMuted
	default:
		return ColorSubtle
	}
}
