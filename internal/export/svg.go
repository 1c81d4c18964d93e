package export

import (
	"fmt"
	"strings"

	"github.com/rbrnka/three-body-problem/internal/analysis"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

// BodyColors are the stroke colors for successive bodies; they repeat.
var BodyColors = []string{"#00ffff", "#ff00ff", "#ffcc00", "#00ff88", "#ff4444", "#8888ff"}

// OrbitSVG draws the path of every body projected onto plane as one SVG
// path per body, all sharing the same scale.
func OrbitSVG(tr *sim.Trajectory, plane analysis.Plane, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("export: invalid size %dx%d", width, height)
	}
	if tr.Len() < 2 {
		return "", fmt.Errorf("export: need at least 2 samples, got %d", tr.Len())
	}

	// Find bounds
	x0, y0, err := plane.Project(tr.Bodies[0].Positions[0])
	if err != nil {
		return "", err
	}
	minX, maxX, minY, maxY := x0, x0, y0, y0
	for _, b := range tr.Bodies {
		for _, pos := range b.Positions {
			x, y, _ := plane.Project(pos)
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, b := range tr.Bodies {
		color := BodyColors[i%len(BodyColors)]
		sb.WriteString(fmt.Sprintf(`<path id="body%d" fill="none" stroke="%s" stroke-width="1.5" d="M`, i, color))

		var lastX, lastY float64
		for k, pos := range b.Positions {
			px, py, _ := plane.Project(pos)
			x := (px - minX) / rangeX * float64(width)
			y := float64(height) - (py-minY)/rangeY*float64(height)

			if k == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
			lastX, lastY = x, y
		}

		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>
`, lastX, lastY, color))
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}
