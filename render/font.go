package render

import (
	"gocv.io/x/gocv"
	"image"
	"image/color"
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// offset of the text origin from the point it labels
	LeftPad int
	TopPad  int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.4,
		Color:     Yellow,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   5,
		TopPad:    -5,
	}
}

// Label draws text with its baseline origin offset from pt by the font padding
func (f Font) Label(img *gocv.Mat, text string, pt image.Point) {
	org := image.Pt(pt.X+f.LeftPad, pt.Y+f.TopPad)
	gocv.PutTextWithParams(img, text, org, f.Face, f.Scale, f.Color,
		f.Thickness, f.LineType, false)
}
