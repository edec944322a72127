package server

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"sync"

	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/labstack/echo/v4"
)

var logger = log.New("server")

// Server exposes a progressive render over HTTP
type Server struct {
	echo        *echo.Echo
	tracer      *renderer.Tracer
	progressive *renderer.Progressive
	console     *Console

	mu     sync.RWMutex
	latest *renderer.FrameStats
}

// NewServer creates a server for tracer driven by progressive. console may
// be nil when log capture is not wanted.
func NewServer(tracer *renderer.Tracer, progressive *renderer.Progressive, console *Console) *Server {
	s := &Server{
		echo:        echo.New(),
		tracer:      tracer,
		progressive: progressive,
		console:     console,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/api/frame.png", s.handleFrame)
	s.echo.GET("/api/stats", s.handleStats)
	s.echo.POST("/api/camera", s.handleCamera)
	s.echo.GET("/api/scenes", s.handleScenes)
	s.echo.GET("/api/inspect", s.handleInspect)
	s.echo.GET("/api/console", s.handleConsole)
	return s
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start renders in the background and serves addr until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		if err := s.RunRenderer(ctx); err != nil {
			logger.Errorf("renderer stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		if err := s.echo.Shutdown(context.Background()); err != nil {
			logger.Warningf("shutdown: %v", err)
		}
	}()

	logger.Noticef("serving on http://%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ErrorResponse is returned for rejected requests
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFrame(c echo.Context) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.tracer.Image()); err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// WorkerStatsResponse is one row of StatsResponse.Workers
type WorkerStatsResponse struct {
	Worker  int   `json:"worker"`
	Regions int   `json:"regions"`
	Pixels  int   `json:"pixels"`
	BusyMs  int64 `json:"busyMs"`
}

// StatsResponse describes the most recent frame
type StatsResponse struct {
	Frame            int                   `json:"frame"`
	Width            int                   `json:"width"`
	Height           int                   `json:"height"`
	Partition        string                `json:"partition"`
	RenderTimeMs     int64                 `json:"renderTimeMs"`
	SamplesPerSecond float64               `json:"samplesPerSecond"`
	Energy           float64               `json:"energy"`
	LuminanceMean    float64               `json:"luminanceMean"`
	LuminanceVar     float64               `json:"luminanceVariance"`
	Workers          []WorkerStatsResponse `json:"workers"`
}

func (s *Server) handleStats(c echo.Context) error {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	config := s.tracer.Config()
	response := StatsResponse{
		Width:     config.Width,
		Height:    config.Height,
		Partition: config.Partition.String(),
		Workers:   []WorkerStatsResponse{},
	}
	if latest != nil {
		response.Frame = latest.Frame
		response.RenderTimeMs = latest.RenderTime.Milliseconds()
		response.SamplesPerSecond = latest.SamplesPerSecond()
		response.Energy = s.tracer.Energy(latest.Frame)
		response.LuminanceMean, response.LuminanceVar = s.tracer.LuminanceStats()
		for _, w := range latest.Workers {
			response.Workers = append(response.Workers, WorkerStatsResponse{
				Worker:  w.Worker,
				Regions: w.Regions,
				Pixels:  w.Pixels,
				BusyMs:  w.Busy.Milliseconds(),
			})
		}
	}
	return c.JSON(http.StatusOK, response)
}

// CameraRequest asks for one camera action, e.g. {"action": "forward"}
type CameraRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleCamera(c echo.Context) error {
	var request CameraRequest
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	action, err := renderer.ParseAction(request.Action)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	s.progressive.Apply(action)
	logger.Debugf("queued camera action %s", action)
	return c.JSON(http.StatusAccepted, map[string]string{"queued": action.String()})
}

func (s *Server) handleScenes(c echo.Context) error {
	return c.JSON(http.StatusOK, scene.ListPresets())
}

func (s *Server) handleConsole(c echo.Context) error {
	if s.console == nil {
		return c.JSON(http.StatusOK, []ConsoleMessage{})
	}
	return c.JSON(http.StatusOK, s.console.Messages())
}
