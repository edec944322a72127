package renderer

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/scene"
)

var logger = log.New("tracer")

// Tracer renders frames of a scene into an accumulation buffer using a pool
// of workers. Trace, SetCamera and SetScene are serialized so the scene and
// camera never change while a frame is in flight.
type Tracer struct {
	mu sync.Mutex

	config     Config
	scene      *scene.Scene
	camera     Camera
	integrator integrator.Integrator

	accum   *Accumulator
	regions []Region
	pool    *WorkerPool

	frame int  // Frame count of the accumulated image
	dirty bool // The next frame must reset accumulation
}

// NewTracer validates its inputs and creates a tracer. The scene is
// preprocessed if it has not been already.
func NewTracer(config Config, s *scene.Scene, camera *Camera, integ integrator.Integrator) (*Tracer, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidResolution, config.Width, config.Height)
	}
	if s == nil {
		return nil, ErrNoScene
	}
	if camera == nil {
		return nil, ErrNoCamera
	}
	if err := ensurePreprocessed(s); err != nil {
		return nil, err
	}
	if config.SamplesPerFrame <= 0 {
		config.SamplesPerFrame = 1
	}

	t := &Tracer{
		config:     config,
		scene:      s,
		integrator: integ,
		accum:      NewAccumulator(config.Width, config.Height),
	}
	t.camera = *camera
	t.camera.Resize(config.Width, config.Height)

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	t.regions = Partition(config.Partition, config.Width, config.Height, workers, config.TileSize)
	t.pool = NewWorkerPool(t, workers, len(t.regions))
	t.pool.Start()

	logger.Infof("tracer ready: %dx%d, %d workers, %d %s regions",
		config.Width, config.Height, t.pool.GetNumWorkers(), len(t.regions), config.Partition)
	return t, nil
}

func ensurePreprocessed(s *scene.Scene) error {
	if s.BVH != nil {
		return nil
	}
	return s.Preprocess()
}

// Close stops the worker pool. The tracer must not be used afterwards.
func (t *Tracer) Close() {
	t.pool.Stop()
}

// Trace renders one frame. Frame 1 (or the first frame after SetCamera or
// SetScene) discards previously accumulated samples. The returned stats
// report the frame number actually used.
func (t *Tracer) Trace(frame int) FrameStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	if frame < 1 || t.dirty {
		frame = 1
		t.dirty = false
	}

	start := time.Now()
	for i := range t.regions {
		t.pool.SubmitTask(RegionTask{Region: &t.regions[i], Frame: frame, TaskID: i})
	}

	workers := make([]WorkerStats, t.pool.GetNumWorkers())
	for i := range workers {
		workers[i].Worker = i
	}
	// Single join point: every region reports back before the frame completes
	for range t.regions {
		result, _ := t.pool.GetResult()
		w := &workers[result.WorkerID]
		w.Regions++
		w.Pixels += result.Pixels
		w.Busy += result.Duration
	}
	t.frame = frame

	stats := FrameStats{
		Frame:      frame,
		Width:      t.config.Width,
		Height:     t.config.Height,
		Samples:    t.config.Width * t.config.Height * t.config.SamplesPerFrame,
		Partition:  t.config.Partition,
		Regions:    len(t.regions),
		RenderTime: time.Since(start),
		Workers:    workers,
	}
	logger.Infof("frame %d traced in %s", frame, stats.RenderTime)
	return stats
}

// traceRegion samples every pixel of region. The sampler is seeded from the
// region and frame so results do not depend on worker scheduling.
func (t *Tracer) traceRegion(region *Region, frame int) {
	sampler := core.NewSeededSampler(regionSeed(t.config.Seed, frame, region.ID))
	width := t.config.Width
	invSamples := 1 / float64(t.config.SamplesPerFrame)

	for _, index := range region.Pixels {
		x, y := index%width, index/width

		var sum core.Vec3
		for s := 0; s < t.config.SamplesPerFrame; s++ {
			ray := t.camera.PixelRay(x, y, sampler, t.config.Jitter)
			sum = sum.Add(t.integrator.Radiance(ray, t.scene, sampler))
		}
		t.accum.Add(index, sum.Multiply(invSamples), frame)
	}
}

func regionSeed(seed int64, frame, region int) int64 {
	h := uint64(seed)*0x9e3779b97f4a7c15 ^ uint64(frame)*0xbf58476d1ce4e5b9 ^ uint64(region)*0x94d049bb133111eb
	h ^= h >> 31
	return int64(h)
}

// Frame returns the number of frames in the accumulated image
func (t *Tracer) Frame() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

// Config returns the tracer configuration
func (t *Tracer) Config() Config {
	return t.config
}

// Camera returns a copy of the current camera
func (t *Tracer) Camera() Camera {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.camera
}

// Scene returns the scene being traced
func (t *Tracer) Scene() *scene.Scene {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scene
}

// SetCamera replaces the camera and invalidates accumulation
func (t *Tracer) SetCamera(camera *Camera) error {
	if camera == nil {
		return ErrNoCamera
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.camera = *camera
	t.camera.Resize(t.config.Width, t.config.Height)
	t.dirty = true
	return nil
}

// SetScene replaces the scene and invalidates accumulation
func (t *Tracer) SetScene(s *scene.Scene) error {
	if s == nil {
		return ErrNoScene
	}
	if err := ensurePreprocessed(s); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scene = s
	t.dirty = true
	return nil
}

// Energy sums the accumulated image as if frame frames had been traced
func (t *Tracer) Energy(frame int) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accum.Energy(frame)
}

// LuminanceStats returns the mean and variance of the accumulated image luminance
func (t *Tracer) LuminanceStats() (mean, variance float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accum.LuminanceStats(t.frame)
}

// Resolved returns the linear color of pixel (x, y)
func (t *Tracer) Resolved(x, y int) core.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accum.Resolve(y*t.config.Width+x, t.frame)
}

// Image returns the tone-mapped accumulated image
func (t *Tracer) Image() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, t.config.Width, t.config.Height))
	for y := 0; y < t.config.Height; y++ {
		for x := 0; x < t.config.Width; x++ {
			img.SetRGBA(x, y, t.vec3ToColor(t.accum.Resolve(y*t.config.Width+x, t.frame)))
		}
	}
	return img
}

// HalfImage returns the linear accumulated image at half precision
func (t *Tracer) HalfImage() *HalfImage {
	t.mu.Lock()
	defer t.mu.Unlock()

	img := NewHalfImage(t.config.Width, t.config.Height)
	for y := 0; y < t.config.Height; y++ {
		for x := 0; x < t.config.Width; x++ {
			img.Set(x, y, t.accum.Resolve(y*t.config.Width+x, t.frame))
		}
	}
	return img
}

func (t *Tracer) vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Multiply(t.config.Exposure)

	// Clamp first so gamma never sees negative values
	colorVec = colorVec.Clamp(0.0, 1.0)
	if t.config.Gamma > 0 {
		colorVec = colorVec.GammaCorrect(t.config.Gamma)
	}

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
