//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"dla/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// HUD renders the parameter panel to the right of the simulation view.
type HUD struct {
	sim        core.Sim
	width      int
	image      *ebiten.Image
	lastHeight int
	snapshot   core.ParameterSnapshot

	panel        *Panel
	rows         []hudRow
	panelOffsetX int

	pixel *ebiten.Image
}

type hudRow struct {
	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// NewHUD constructs a HUD for the provided simulation and panel width.
func NewHUD(sim core.Sim, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{sim: sim, width: width, panel: NewPanel(sim)}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.layoutControls()
	return h
}

// Update refreshes the cached parameter snapshot from the simulation and handles
// HUD interactions.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	provider, ok := h.sim.(core.ParameterProvider)
	if !ok {
		h.snapshot = core.ParameterSnapshot{}
		return
	}
	h.snapshot = provider.Parameters()
	h.panel.Refresh(h.snapshot)
	h.handleInput()
}

// Draw paints the HUD panel anchored to the right edge of the simulation view.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	height := h.sim.Size().H * scale
	if height <= 0 {
		return
	}
	if h.image == nil || h.lastHeight != height {
		h.image = ebiten.NewImage(h.width, height)
		h.lastHeight = height
	}
	h.image.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawControls()
	h.drawStats()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.image, op)
}

func (h *HUD) handleInput() {
	if len(h.rows) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i, row := range h.rows {
		if pointInRect(px, my, row.minusRect) {
			h.panel.Adjust(i, -1)
			return
		}
		if pointInRect(px, my, row.plusRect) {
			h.panel.Adjust(i, 1)
			return
		}
	}
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	headerY := panelPadding + headerBaseline
	text.Draw(h.image, h.panel.Title, face, panelPadding, headerY, color.RGBA{R: 200, G: 200, B: 210, A: 255})
	if len(h.rows) == 0 {
		text.Draw(h.image, "No adjustable parameters", face, panelPadding, headerY+infoSpacing, dimText)
		return
	}
	for i, row := range h.rows {
		label, value := h.panel.Label(i)
		labelY := row.top + labelBaseline
		text.Draw(h.image, label, face, panelPadding, labelY, brightText)
		valueColor := brightText
		if !h.panel.HasValue(i) {
			valueColor = dimText
		}
		bounds := text.BoundString(face, value)
		valueX := row.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.image, value, face, valueX, labelY, valueColor)

		h.drawButton(row.minusRect, "-", h.panel.CanAdjust(i, -1))
		h.drawButton(row.plusRect, "+", h.panel.CanAdjust(i, 1))
	}
}

// drawStats lists the read-only "Cluster" group below the controls.
func (h *HUD) drawStats() {
	y := controlsTop + len(h.rows)*lineHeight + headerBaseline
	face := basicfont.Face7x13
	for _, group := range h.snapshot.Groups {
		if group.Name != "Cluster" {
			continue
		}
		text.Draw(h.image, group.Name, face, panelPadding, y, color.RGBA{R: 200, G: 200, B: 210, A: 255})
		y += statsLine
		for _, param := range group.Params {
			if y > h.lastHeight-panelPadding {
				return
			}
			text.Draw(h.image, param.Label, face, panelPadding, y, dimText)
			bounds := text.BoundString(face, param.Value)
			text.Draw(h.image, param.Value, face, h.width-panelPadding-bounds.Dx(), y, brightText)
			y += statsLine
		}
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.image.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.image, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.panel.Len() == 0 || h.width <= 0 {
		return
	}
	h.rows = make([]hudRow, h.panel.Len())
	for i := range h.rows {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.rows[i] = hudRow{top: top, minusRect: minusRect, plusRect: plusRect}
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

var (
	brightText = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimText    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 30
	buttonSize     = 22
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 20
	infoSpacing    = 36
	statsLine      = 16
	controlsTop    = panelPadding + headerBaseline + 14
)
