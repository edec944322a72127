package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/x448/float16"
)

// HalfImage is a linear RGBA image with half-precision channels, four per pixel
type HalfImage struct {
	Width, Height int
	Pix           []float16.Float16
}

// NewHalfImage creates a transparent black image
func NewHalfImage(width, height int) *HalfImage {
	return &HalfImage{Width: width, Height: height, Pix: make([]float16.Float16, 4*width*height)}
}

// Set stores color at (x, y) with alpha 1
func (h *HalfImage) Set(x, y int, color core.Vec3) {
	i := 4 * (y*h.Width + x)
	h.Pix[i] = float16.Fromfloat32(float32(color.X))
	h.Pix[i+1] = float16.Fromfloat32(float32(color.Y))
	h.Pix[i+2] = float16.Fromfloat32(float32(color.Z))
	h.Pix[i+3] = float16.Fromfloat32(1)
}

// At returns the color at (x, y)
func (h *HalfImage) At(x, y int) core.Vec3 {
	i := 4 * (y*h.Width + x)
	return core.NewVec3(
		float64(h.Pix[i].Float32()),
		float64(h.Pix[i+1].Float32()),
		float64(h.Pix[i+2].Float32()),
	)
}
