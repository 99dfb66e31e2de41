package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/kinsim/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds one species plotted against another.
type PhasePortrait2D struct {
	XName, YName string
	Points       []Point
}

// PhasePortrait pairs the samples of two species of a trajectory.
func PhasePortrait(traj *sim.Trajectory, xName, yName string) (*PhasePortrait2D, error) {
	xs, ok := traj.Series(xName)
	if !ok {
		return nil, fmt.Errorf("analysis: unknown species %q", xName)
	}
	ys, ok := traj.Series(yName)
	if !ok {
		return nil, fmt.Errorf("analysis: unknown species %q", yName)
	}

	portrait := &PhasePortrait2D{
		XName:  xName,
		YName:  yName,
		Points: make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return portrait, nil
}

// PhasePortraitToASCII draws the portrait as a width x height dot plot
// with the y species named above it and the x species below.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	// 10% margin on each side
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

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// zero axes, when in view
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(portrait.YName + "\n")
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	sb.WriteString(strings.Repeat(" ", max(0, width-len(portrait.XName))) + portrait.XName + "\n")
	return sb.String()
}
