package server

import (
	"context"
	"errors"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// RunRenderer drives the progressive render, recording each frame's stats,
// until the render finishes or ctx is cancelled
func (s *Server) RunRenderer(ctx context.Context) error {
	frames, errs := s.progressive.Render(ctx)

	for result := range frames {
		stats := result.Stats
		s.mu.Lock()
		s.latest = &stats
		s.mu.Unlock()

		if result.Frame == 1 || result.IsLast {
			logger.Infof("frame %d rendered in %s", result.Frame, stats.RenderTime)
		}
	}

	if err := <-errs; err != nil && !errors.Is(err, renderer.ErrInterrupted) {
		return err
	}
	return nil
}

// Latest returns the stats of the most recent frame, if any
func (s *Server) Latest() (renderer.FrameStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return renderer.FrameStats{}, false
	}
	return *s.latest, true
}
