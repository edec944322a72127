package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/web/server"
	"github.com/urfave/cli"
)

// Serve renders a scene progressively and serves a live preview over HTTP
// until interrupted.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	console := server.NewConsole(ctx.Int("console-lines"))
	log.SetSink(io.MultiWriter(os.Stdout, console))

	tracer, err := newTracer(ctx)
	if err != nil {
		return err
	}
	defer tracer.Close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progressive := renderer.NewProgressive(tracer, renderer.ProgressiveConfig{MaxFrames: ctx.Int("frames")})
	srv := server.NewServer(tracer, progressive, console)
	return srv.Start(runCtx, ctx.String("addr"))
}
