package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"

	"github.com/df07/go-pathtracer/pkg/gpu"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/urfave/cli"
)

// rendererConfig builds the renderer configuration from the command flags
func rendererConfig(ctx *cli.Context) (renderer.Config, error) {
	config := renderer.DefaultConfig()
	config.Width = ctx.Int("width")
	config.Height = ctx.Int("height")
	config.SamplesPerFrame = ctx.Int("spp")
	config.Exposure = ctx.Float64("exposure")
	config.Seed = ctx.Int64("seed")
	config.Workers = ctx.Int("workers")
	if config.Workers <= 0 {
		config.Workers = defaultWorkers()
	}

	partition, err := renderer.ParsePartition(ctx.String("partition"))
	if err != nil {
		return config, err
	}
	config.Partition = partition
	return config, nil
}

// integratorConfig builds the path tracer configuration from the command flags
func integratorConfig(ctx *cli.Context) (integrator.Config, error) {
	config := integrator.DefaultConfig()
	config.MaxDepth = ctx.Int("depth")
	config.NextEventEstimation = !ctx.Bool("no-nee")
	config.RussianRoulette = !ctx.Bool("no-roulette")

	diffuse, err := integrator.ParseDiffuseSampling(ctx.String("diffuse"))
	if err != nil {
		return config, err
	}
	config.DiffuseSampling = diffuse

	dielectric, err := integrator.ParseDielectricMode(ctx.String("dielectric"))
	if err != nil {
		return config, err
	}
	config.DielectricMode = dielectric
	return config, nil
}

// newTracer loads the scene named by the --scene flag and sets up a tracer for it
func newTracer(ctx *cli.Context) (*renderer.Tracer, error) {
	s, err := loadScene(ctx.String("scene"), ctx.String("strategy"))
	if err != nil {
		return nil, err
	}

	config, err := rendererConfig(ctx)
	if err != nil {
		return nil, err
	}

	integ, err := integratorConfig(ctx)
	if err != nil {
		return nil, err
	}

	camera := renderer.NewCamera(s.Camera, config.Width, config.Height)
	return renderer.NewTracer(config, s, camera, integrator.NewPathTracer(integ))
}

// RenderFrame progressively renders a scene and writes the final frame as a PNG.
// An interrupt stops rendering early and still writes the frames so far.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	tracer, err := newTracer(ctx)
	if err != nil {
		return err
	}
	defer tracer.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progressive := renderer.NewProgressive(tracer, renderer.ProgressiveConfig{MaxFrames: max(1, ctx.Int("frames"))})
	frames, errs := progressive.Render(runCtx)

	var last renderer.FrameResult
	for result := range frames {
		last = result
		logger.Infof("frame %d: %s", result.Frame, result.Stats.RenderTime)
	}
	if err := <-errs; err != nil {
		if !errors.Is(err, renderer.ErrInterrupted) {
			return err
		}
		logger.Warning("render interrupted")
	}
	if last.Image == nil {
		return errors.New("cmd: no frame was rendered")
	}

	logger.Noticef("frame statistics\n%s", renderer.RenderStatsTable(last.Stats))

	out := ctx.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, last.Image); err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}
	logger.Noticef("wrote %s (%d frames)", out, last.Frame)

	if half := ctx.String("half"); half != "" {
		if err := os.WriteFile(half, gpu.ImageBytes(tracer.HalfImage()), 0o644); err != nil {
			return err
		}
		logger.Noticef("wrote %s (half-float RGBA)", half)
	}
	return nil
}
