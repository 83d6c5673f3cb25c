package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"pagesmith/internal/component"
)

type tone uint8

const (
	toneText tone = iota
	toneBorder
	toneSelected
	toneHandle
	toneTitle
	toneMuted
)

// Canvas is a character raster of the page, one rune per terminal cell.
type Canvas struct {
	width  int
	height int
	cells  [][]rune
	tones  [][]tone
}

// cellRect is an inclusive range of cells.
type cellRect struct {
	X0, Y0, X1, Y1 int
}

func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 1), max(height, 1)
	c := &Canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.tones = make([][]tone, height)
	for y := range c.cells {
		c.cells[y] = make([]rune, width)
		c.tones[y] = make([]tone, width)
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
	return c
}

func (c *Canvas) isValidPos(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

func (c *Canvas) set(x, y int, r rune, t tone) {
	if c.isValidPos(x, y) {
		c.cells[y][x] = r
		c.tones[y][x] = t
	}
}

// write puts s at x,y, cut to limit cells, and returns the cells used.
func (c *Canvas) write(x, y int, s string, limit int, t tone) int {
	n := 0
	for _, r := range s {
		if n >= limit {
			break
		}
		c.set(x+n, y, r, t)
		n++
	}
	return n
}

// toCells maps a page rectangle to the cells whose centres fall inside it.
// ox, oy is the page position of the cell grid's origin.
func toCells(x, y, w, h, ox, oy float64) cellRect {
	r := cellRect{
		X0: int(math.Ceil((x - ox - cellWidth/2) / cellWidth)),
		Y0: int(math.Ceil((y - oy - cellHeight/2) / cellHeight)),
		X1: int(math.Ceil((x+w-ox-cellWidth/2)/cellWidth)) - 1,
		Y1: int(math.Ceil((y+h-oy-cellHeight/2)/cellHeight)) - 1,
	}
	r.X1 = max(r.X1, r.X0+1)
	r.Y1 = max(r.Y1, r.Y0+1)
	return r
}

func (c *Canvas) box(r cellRect, selected bool) {
	h, v := '─', '│'
	tl, tr, bl, br := '┌', '┐', '└', '┘'
	t := toneBorder
	if selected {
		h, v = '═', '║'
		tl, tr, bl, br = '╔', '╗', '╚', '╝'
		t = toneSelected
	}
	for y := r.Y0; y <= r.Y1; y++ {
		for x := r.X0; x <= r.X1; x++ {
			c.set(x, y, ' ', toneText)
		}
	}
	for x := r.X0 + 1; x < r.X1; x++ {
		c.set(x, r.Y0, h, t)
		c.set(x, r.Y1, h, t)
	}
	for y := r.Y0 + 1; y < r.Y1; y++ {
		c.set(r.X0, y, v, t)
		c.set(r.X1, y, v, t)
	}
	c.set(r.X0, r.Y0, tl, t)
	c.set(r.X1, r.Y0, tr, t)
	c.set(r.X0, r.Y1, bl, t)
	c.set(r.X1, r.Y1, br, t)
}

// DrawComponent draws snap into the cells of r.
func (c *Canvas) DrawComponent(snap component.Snapshot, r cellRect, selected bool) {
	c.box(r, selected)
	inner := r.X1 - r.X0 - 1
	if snap.Locked {
		c.write(r.X1-7, r.Y0, " lock ", 6, toneMuted)
	}
	y := r.Y0 + 1
	switch snap.Type {
	case component.KindCard:
		if y < r.Y1 {
			c.write(r.X0+1, y, snap.Title, inner, toneTitle)
			y++
		}
		if y < r.Y1 {
			c.set(r.X0, y, '├', toneBorder)
			c.set(r.X1, y, '┤', toneBorder)
			for x := r.X0 + 1; x < r.X1; x++ {
				c.set(x, y, '─', toneBorder)
			}
			y++
		}
		for _, line := range wrapText(snap.Content, inner) {
			if y >= r.Y1 {
				break
			}
			c.write(r.X0+1, y, line, inner, toneText)
			y++
		}
	case component.KindImage:
		lines := []string{"▣ " + snap.Alt, snap.Src, "fit: " + snap.ObjectFit}
		for i, line := range lines {
			if y >= r.Y1 {
				break
			}
			t := toneText
			if i > 0 {
				t = toneMuted
			}
			c.write(r.X0+1, y, line, inner, t)
			y++
		}
	default:
		if y < r.Y1 {
			c.write(r.X0+1, y, string(snap.Type), inner, toneMuted)
		}
	}
}

// handleCell is the cell a resize handle is drawn on.
func handleCell(pos string, r cellRect) point {
	p := point{(r.X0 + r.X1) / 2, (r.Y0 + r.Y1) / 2}
	if strings.Contains(pos, "left") {
		p.X = r.X0
	}
	if strings.Contains(pos, "right") {
		p.X = r.X1
	}
	if strings.Contains(pos, "top") {
		p.Y = r.Y0
	}
	if strings.Contains(pos, "bottom") {
		p.Y = r.Y1
	}
	return p
}

func wrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case len([]rune(line))+1+len([]rune(word)) <= width:
				line += " " + word
			default:
				lines = append(lines, line)
				line = word
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// Lines returns the raster as plain text.
func (c *Canvas) Lines() []string {
	out := make([]string, c.height)
	for y, row := range c.cells {
		out[y] = strings.TrimRight(string(row), " ")
	}
	return out
}

// Styled returns the raster with each run of equal tones styled.
func (c *Canvas) Styled(styles map[tone]lipgloss.Style) []string {
	out := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.tones[y][x] == c.tones[y][start] {
				continue
			}
			run := string(row[start:x])
			if st, ok := styles[c.tones[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		out[y] = b.String()
	}
	return out
}

// parseColor reads a CSS hex colour, falling back to def.
func parseColor(s string, def color.Color) color.Color {
	if c, err := colorful.Hex(strings.TrimSpace(s)); err == nil {
		return c
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white":
		return color.White
	case "black":
		return color.Black
	case "transparent":
		return color.Transparent
	}
	return def
}

// ExportToPNG draws the visible components at their page geometry.
func ExportToPNG(filename string, snaps []component.Snapshot) error {
	var visible []component.Snapshot
	for _, s := range snaps {
		if s.Visible {
			visible = append(visible, s)
		}
	}
	if len(visible) == 0 {
		return fmt.Errorf("nothing to export")
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].ZIndex < visible[j].ZIndex })

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range visible {
		minX = math.Min(minX, s.Left)
		minY = math.Min(minY, s.Top)
		maxX = math.Max(maxX, s.Left+s.Width)
		maxY = math.Max(maxY, s.Top+s.Height)
	}
	padding := 16.0
	minX -= padding
	minY -= padding
	imageWidth := int(math.Ceil(maxX - minX + padding))
	imageHeight := int(math.Ceil(maxY - minY + padding))

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	for _, s := range visible {
		drawComponentPNG(dc, s, s.Left-minX, s.Top-minY)
	}
	return dc.SavePNG(filename)
}

func drawComponentPNG(dc *gg.Context, s component.Snapshot, x, y float64) {
	dc.Push()
	defer dc.Pop()

	alpha := math.Max(0, math.Min(1, s.Opacity))
	fill := func(c color.Color) {
		r, g, b, a := c.RGBA()
		dc.SetRGBA(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff, float64(a)/0xffff*alpha)
	}

	dc.DrawRoundedRectangle(x, y, s.Width, s.Height, s.BorderRadius)
	fill(parseColor(s.BackgroundColor, color.White))
	dc.Fill()

	textX := x + cellWidth
	switch s.Type {
	case component.KindCard:
		header := math.Min(s.Height, 2*cellHeight)
		dc.DrawRectangle(x, y, s.Width, header)
		fill(parseColor(s.HeaderBGColor, color.Gray{Y: 0xf0}))
		dc.Fill()
		fill(parseColor(s.HeaderTextColor, color.Black))
		dc.DrawString(s.Title, textX, y+cellHeight+4)
		fill(parseColor(s.ContentColor, color.Black))
		lines := dc.WordWrap(s.Content, s.Width-2*cellWidth)
		for i, line := range lines {
			ly := y + header + float64(i+1)*cellHeight
			if ly > y+s.Height {
				break
			}
			dc.DrawString(line, textX, ly)
		}
	case component.KindImage:
		fill(color.Gray{Y: 0x99})
		dc.DrawLine(x, y, x+s.Width, y+s.Height)
		dc.DrawLine(x+s.Width, y, x, y+s.Height)
		dc.SetLineWidth(1)
		dc.Stroke()
		fill(color.Black)
		dc.DrawStringAnchored(s.Alt, x+s.Width/2, y+s.Height/2, 0.5, 0.5)
	}

	if s.BorderWidth > 0 {
		dc.DrawRoundedRectangle(x, y, s.Width, s.Height, s.BorderRadius)
		dc.SetLineWidth(s.BorderWidth)
		fill(parseColor(s.BorderColor, color.Black))
		dc.Stroke()
	}
}
