package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"gonum.org/v1/gonum/stat"
)

// Accumulator holds the per-pixel running sum of frame samples. Each pixel is
// written by exactly one worker per frame so no locking is needed.
type Accumulator struct {
	width, height int
	sum           []core.Vec3
}

// NewAccumulator creates a zeroed accumulation buffer
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{width: width, height: height, sum: make([]core.Vec3, width*height)}
}

// Add accumulates sample into pixel index. Frame 1 replaces the stored sum.
func (a *Accumulator) Add(index int, sample core.Vec3, frame int) {
	if frame <= 1 {
		a.sum[index] = sample
		return
	}
	a.sum[index] = a.sum[index].Add(sample)
}

// Sum returns the raw accumulated value of pixel index
func (a *Accumulator) Sum(index int) core.Vec3 {
	return a.sum[index]
}

// Resolve returns the displayed value of pixel index after frame frames
func (a *Accumulator) Resolve(index, frame int) core.Vec3 {
	if frame < 1 {
		frame = 1
	}
	return a.sum[index].Multiply(1 / float64(frame))
}

// Len returns the number of pixels
func (a *Accumulator) Len() int {
	return len(a.sum)
}

// Reset zeroes every pixel
func (a *Accumulator) Reset() {
	clear(a.sum)
}

// Energy sums every channel of every resolved pixel after frame frames
func (a *Accumulator) Energy(frame int) float64 {
	var total float64
	for i := range a.sum {
		total += a.Resolve(i, frame).Sum()
	}
	return total
}

// LuminanceStats returns the mean and variance of resolved pixel luminance
func (a *Accumulator) LuminanceStats(frame int) (mean, variance float64) {
	if len(a.sum) == 0 {
		return 0, 0
	}
	values := make([]float64, len(a.sum))
	for i := range a.sum {
		values[i] = a.Resolve(i, frame).Luminance()
	}
	return stat.MeanVariance(values, nil)
}
