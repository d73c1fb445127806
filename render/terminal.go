package render

import (
	"math"

	"github.com/akmonengine/flock/camera"
	"github.com/gdamore/tcell/v2"
)

const maxLineFactor = 4

// Screen is the part of tcell.Screen the terminal canvas draws on
type Screen interface {
	Clear()
	SetContent(x int, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
	Show()
}

// TerminalCanvas rasterizes screen segments into terminal cells.
// Segments are given in viewport pixels and scaled to the terminal size.
type TerminalCanvas struct {
	screen Screen
	width  float64
	height float64

	Rune  rune
	Style tcell.Style
}

// NewTerminalCanvas creates a canvas mapping a width x height viewport onto screen
func NewTerminalCanvas(screen Screen, width, height float64) *TerminalCanvas {
	return &TerminalCanvas{
		screen: screen,
		width:  width,
		height: height,
		Rune:   '·',
		Style:  tcell.StyleDefault.Foreground(tcell.ColorWhite),
	}
}

// Resize changes the viewport size the canvas expects segments in
func (c *TerminalCanvas) Resize(width, height float64) {
	c.width = width
	c.height = height
}

func (c *TerminalCanvas) Clear() {
	c.screen.Clear()
}

func (c *TerminalCanvas) Show() {
	c.screen.Show()
}

// DrawSegments draws every segment as a line of cells. Cells outside the terminal are skipped.
func (c *TerminalCanvas) DrawSegments(segments []camera.ScreenSegment) {
	if c.width <= 0 || c.height <= 0 {
		return
	}
	cols, rows := c.screen.Size()
	sx := float64(cols) / c.width
	sy := float64(rows) / c.height

	for _, s := range segments {
		x0, y0 := cell(s.Start.X()*sx), cell(s.Start.Y()*sy)
		x1, y1 := cell(s.End.X()*sx), cell(s.End.Y()*sy)
		c.line(x0, y0, x1, y1, cols, rows)
	}
}

// line plots a Bresenham line, clipped cell by cell
func (c *TerminalCanvas) line(x0, y0, x1, y1, cols, rows int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}

	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= cols && x1 >= cols) || (y0 >= rows && y1 >= rows) {
		return
	}
	// segments ending near the camera plane project to huge lengths
	if dx-dy > maxLineFactor*(cols+rows) {
		return
	}

	err := dx + dy
	for {
		if x0 >= 0 && x0 < cols && y0 >= 0 && y0 < rows {
			c.screen.SetContent(x0, y0, c.Rune, nil, c.Style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += stepX
		}
		if e2 <= dx {
			err += dx
			y0 += stepY
		}
	}
}

// cell converts a scaled coordinate to a cell index, saturating at the int32 range
func cell(v float64) int {
	if math.IsNaN(v) {
		return math.MinInt32
	}
	return int(math.Floor(math.Max(math.MinInt32, math.Min(math.MaxInt32, v))))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
