package renderer

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/df07/go-pathtracer/pkg/log"
)

var progressiveLogger = log.New("progressive")

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	MaxFrames int // Stop once this many frames have accumulated (0 = run until cancelled)
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{MaxFrames: 64}
}

// FrameResult contains the result of a single frame
type FrameResult struct {
	Frame  int
	Image  *image.RGBA
	Stats  FrameStats
	IsLast bool
}

// Progressive drives a Tracer frame after frame, applying queued camera
// actions between frames and restarting accumulation when it does
type Progressive struct {
	tracer *Tracer
	config ProgressiveConfig

	mu      sync.Mutex
	pending []Action
}

// NewProgressive creates a progressive driver for tracer
func NewProgressive(tracer *Tracer, config ProgressiveConfig) *Progressive {
	return &Progressive{tracer: tracer, config: config}
}

// Apply queues a camera action for the next frame boundary
func (p *Progressive) Apply(action Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, action)
}

// applyPending moves the camera by every queued action. It reports whether
// the camera changed.
func (p *Progressive) applyPending() bool {
	p.mu.Lock()
	actions := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(actions) == 0 {
		return false
	}

	camera := p.tracer.Camera()
	for _, action := range actions {
		camera.Apply(action)
	}
	// SetCamera only fails on a nil camera
	_ = p.tracer.SetCamera(&camera)
	progressiveLogger.Debugf("applied %d camera actions", len(actions))
	return true
}

// Render traces frames on a background goroutine and returns channels for
// the results. The error channel receives ErrInterrupted if ctx ends first.
func (p *Progressive) Render(ctx context.Context) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		progressiveLogger.Infof("starting progressive rendering (max frames %d)", p.config.MaxFrames)

		frame := 1
		for {
			// The smallest cancellable unit is the next frame
			select {
			case <-ctx.Done():
				progressiveLogger.Infof("rendering cancelled before frame %d", frame)
				errChan <- fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
				return
			default:
			}

			if p.applyPending() {
				frame = 1
			}

			stats := p.tracer.Trace(frame)
			frame = stats.Frame

			isLast := p.config.MaxFrames > 0 && frame >= p.config.MaxFrames
			result := FrameResult{
				Frame:  frame,
				Image:  p.tracer.Image(),
				Stats:  stats,
				IsLast: isLast,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
				return
			}

			if isLast {
				progressiveLogger.Infof("reached %d frames, stopping", frame)
				return
			}
			frame++
		}
	}()

	return frameChan, errChan
}
