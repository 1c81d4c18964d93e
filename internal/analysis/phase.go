package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/physics"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

// Centroid returns the centre of mass at every sample of tr.
func Centroid(tr *sim.Trajectory) []r3.Vec {
	masses := tr.Masses()
	out := make([]r3.Vec, tr.Len())
	for k := range out {
		out[k] = physics.CenterOfMass(masses, tr.Positions(k))
	}
	return out
}

// Plane names the two position axes an orbit is projected onto.
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
	PlaneYZ Plane = "yz"
)

// Project returns the two in-plane coordinates of v.
func (p Plane) Project(v r3.Vec) (float64, float64, error) {
	switch p {
	case PlaneXY:
		return v.X, v.Y, nil
	case PlaneXZ:
		return v.X, v.Z, nil
	case PlaneYZ:
		return v.Y, v.Z, nil
	}
	return 0, 0, fmt.Errorf("analysis: unknown plane %q", string(p))
}

// OrbitASCII draws the path of every body projected onto plane. Body i is
// drawn with the digit i+1; later bodies overwrite earlier ones.
func OrbitASCII(tr *sim.Trajectory, plane Plane, width, height int) (string, error) {
	if width < 2 || height < 2 {
		return "", fmt.Errorf("analysis: canvas %dx%d is too small", width, height)
	}
	if _, _, err := plane.Project(r3.Vec{}); err != nil {
		return "", err
	}
	if tr.Len() == 0 {
		return "", nil
	}

	// Find bounds
	x0, y0, _ := plane.Project(tr.Bodies[0].Positions[0])
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
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for i, b := range tr.Bodies {
		glyph := '•'
		if i < 9 {
			glyph = rune('1' + i)
		}
		for _, pos := range b.Positions {
			x, y, _ := plane.Project(pos)
			col := int((x - minX) / rangeX * float64(width-1))
			row := height - 1 - int((y-minY)/rangeY*float64(height-1))
			if row >= 0 && row < height && col >= 0 && col < width {
				canvas[row][col] = glyph
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}
