package main

import (
	"os"

	"github.com/df07/go-pathtracer/cmd"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/urfave/cli"
)

var logger = log.New("cli")

func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: "default",
			Usage: "built-in scene id, .json scene file or .obj mesh",
		},
		cli.StringFlag{
			Name:  "strategy",
			Value: "sah",
			Usage: "BVH split strategy (sah or median)",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 400,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 225,
			Usage: "frame height",
		},
	}
}

func tracerFlags() []cli.Flag {
	return append(sceneFlags(),
		cli.IntFlag{
			Name:  "spp",
			Value: 1,
			Usage: "samples per pixel per frame",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of render workers (0 uses every logical cpu)",
		},
		cli.StringFlag{
			Name:  "partition",
			Value: "morton",
			Usage: "pixel partition strategy (rows, morton or workgroups)",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 42,
			Usage: "base random seed",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.IntFlag{
			Name:  "depth",
			Value: 5,
			Usage: "maximum path depth",
		},
		cli.StringFlag{
			Name:  "diffuse",
			Value: "cosine",
			Usage: "diffuse bounce sampling (cosine or uniform)",
		},
		cli.StringFlag{
			Name:  "dielectric",
			Value: "stochastic",
			Usage: "dielectric evaluation (stochastic or split)",
		},
		cli.BoolFlag{
			Name:  "no-nee",
			Usage: "disable next event estimation",
		},
		cli.BoolFlag{
			Name:  "no-roulette",
			Usage: "disable russian roulette",
		},
	)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "go-pathtracer"
	app.Usage = "render scenes using progressive path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a png file",
			Description: `
Accumulate the requested number of progressive frames and write the final
frame as a PNG. Per-worker statistics of the last frame are printed as a table.`,
			Flags: append(tracerFlags(),
				cli.IntFlag{
					Name:  "frames, f",
					Value: 16,
					Usage: "number of progressive frames",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.StringFlag{
					Name:  "half",
					Usage: "also write the linear frame as raw half-float RGBA to this file",
				},
			),
			Action: cmd.RenderFrame,
		},
		{
			Name:  "compile",
			Usage: "compile scenes into GPU buffer archives",
			Description: `
Load each scene, build a BVH tree to optimize ray intersection tests and pack
scene elements in the std140 layout expected by the compute kernel.

The packed buffers are written to a zip archive per scene.`,
			ArgsUsage: "scene1 scene2.json mesh.obj ...",
			Flags: append(sceneFlags(),
				cli.StringFlag{
					Name:  "out-dir",
					Value: ".",
					Usage: "directory for the compiled archives",
				},
			),
			Action: cmd.CompileScene,
		},
		{
			Name:   "list-devices",
			Usage:  "list host cpus available to the renderer",
			Action: cmd.ListDevices,
		},
		{
			Name:  "serve",
			Usage: "serve a live preview of a progressive render",
			Flags: append(tracerFlags(),
				cli.StringFlag{
					Name:  "addr",
					Value: "localhost:8080",
					Usage: "listen address",
				},
				cli.IntFlag{
					Name:  "frames, f",
					Value: 0,
					Usage: "stop after this many frames (0 renders until interrupted)",
				},
				cli.IntFlag{
					Name:  "console-lines",
					Value: 200,
					Usage: "log lines kept for the console endpoint",
				},
			),
			Action: cmd.Serve,
		},
	}
	return app
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	if err := newApp().Run(os.Args); err != nil {
		logger.Errorf("error: %v", err)
		os.Exit(1)
	}
}
