package render

import "image/color"

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}

	// Green is the default color of the skeleton limbs
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	// Red is the default color of the joint markers
	Red = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)
