// pkg/render/terminal.go
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/physics"
)

const (
	shipTint    = "#ffffff"
	anomalyTint = "#7df9ff"
	ringSamples = 48
)

type cell struct {
	glyph rune
	tint  string
}

// TerminalRenderer draws a top-down view of the orbital plane as text.
// World X runs left to right and world Z top to bottom.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]cell
	scale     float64 // world units per cell
	centerPos physics.Vector2D

	out     io.Writer
	palette Palette
	styled  bool
	styles  map[string]lipgloss.Style
}

// NewTerminalRenderer creates a renderer that writes frames to out.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]cell, height)
	for i := range buffer {
		buffer[i] = make([]cell, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    out,
		styles: make(map[string]lipgloss.Style),
	}
	r.Clear()
	return r
}

// SetCenter sets the world X/Z point shown at the middle of the view.
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// SetPalette sets where body colours come from.
func (r *TerminalRenderer) SetPalette(p Palette) {
	r.palette = p
}

// SetStyled turns ANSI colour output on or off.
func (r *TerminalRenderer) SetStyled(styled bool) {
	r.styled = styled
}

// worldToScreen converts a world position to a cell.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector3) (int, int) {
	x := math.Floor((pos.X()-r.centerPos.X)/r.scale + float64(r.width)/2)
	y := math.Floor((pos.Z()-r.centerPos.Y)/r.scale + float64(r.height)/2)
	return int(x), int(y)
}

func (r *TerminalRenderer) plot(x, y int, glyph rune, tint string) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	r.buffer[y][x] = cell{glyph: glyph, tint: tint}
}

func (r *TerminalRenderer) tint(key, fallback string) string {
	if r.palette == nil || key == "" {
		return fallback
	}
	return r.palette.Appearance(key).Tint
}

// Clear implements entity.Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = cell{glyph: ' '}
		}
	}
}

// Present implements entity.Renderer.
func (r *TerminalRenderer) Present() {
	if r.out == nil {
		return
	}
	frame := r.String()
	if r.styled {
		frame = r.Styled()
	}
	fmt.Fprint(r.out, "\033[H\033[2J"+frame)
}

// String returns the current buffer framed by a border, without colour.
func (r *TerminalRenderer) String() string {
	return r.render(func(c cell) string { return string(c.glyph) })
}

// Styled returns the current buffer with each glyph coloured by its tint.
func (r *TerminalRenderer) Styled() string {
	return r.render(func(c cell) string {
		if c.tint == "" || c.glyph == ' ' {
			return string(c.glyph)
		}
		style, ok := r.styles[c.tint]
		if !ok {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(c.tint))
			r.styles[c.tint] = style
		}
		return style.Render(string(c.glyph))
	})
}

func (r *TerminalRenderer) render(draw func(cell) string) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	b.WriteString(border)
	for y := range r.buffer {
		b.WriteByte('|')
		for x := range r.buffer[y] {
			b.WriteString(draw(r.buffer[y][x]))
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}

// RenderBody implements entity.Renderer. Bodies larger than a cell are
// drawn as filled discs with their initial at the centre.
func (r *TerminalRenderer) RenderBody(body *entity.Body) {
	pos := body.WorldPosition()
	cx, cy := r.worldToScreen(pos)

	key := ""
	if body.Surface != nil {
		key = body.Surface.Texture
	}
	tint := r.tint(key, "#cccccc")

	if body.Ring != nil {
		ringTint := r.tint(body.Ring.Texture, tint)
		outer := body.Radius * body.Ring.OuterScale
		for i := 0; i < ringSamples; i++ {
			a := 2 * math.Pi * float64(i) / ringSamples
			p := pos.Add(physics.Vector3{outer * math.Cos(a), 0, outer * math.Sin(a)})
			x, y := r.worldToScreen(p)
			r.plot(x, y, '~', ringTint)
		}
	}

	fill := 'o'
	glyph := 'O'
	if body.IsStar() {
		fill, glyph = '@', '*'
	} else if name := []rune(body.Name); len(name) > 0 {
		glyph = unicode.ToUpper(name[0])
	}

	cells := int(math.Floor(body.Radius / r.scale))
	for dy := -cells; dy <= cells; dy++ {
		for dx := -cells; dx <= cells; dx++ {
			if dx*dx+dy*dy <= cells*cells {
				r.plot(cx+dx, cy+dy, fill, tint)
			}
		}
	}
	r.plot(cx, cy, glyph, tint)
}

// RenderShip implements entity.Renderer. The arrow points along the ship's
// heading projected onto the orbital plane.
func (r *TerminalRenderer) RenderShip(ship *entity.Ship) {
	x, y := r.worldToScreen(ship.Flight.Position)
	r.plot(x, y, headingGlyph(ship.Forward()), shipTint)
}

// RenderAnomaly implements entity.Renderer.
func (r *TerminalRenderer) RenderAnomaly(anomaly *entity.Anomaly) {
	if !anomaly.Alive() {
		return
	}
	x, y := r.worldToScreen(anomaly.Position)
	r.plot(x, y, '+', anomalyTint)
}

// headingGlyph picks the arrow closest to forward's X/Z direction.
func headingGlyph(forward physics.Vector3) rune {
	fx, fz := forward.X(), forward.Z()
	if math.Abs(fx) < 1e-9 && math.Abs(fz) < 1e-9 {
		return 'A'
	}
	if math.Abs(fx) >= math.Abs(fz) {
		if fx >= 0 {
			return '>'
		}
		return '<'
	}
	if fz >= 0 {
		return 'v'
	}
	return '^'
}
