package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-pathtracer/pkg/gpu"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/urfave/cli"
)

var errNoScenes = errors.New("cmd: compile needs at least one scene")

// compiledName returns the archive path for a scene argument
func compiledName(scene, outDir string) string {
	base := filepath.Base(scene)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, base+".zip")
}

// CompileScene packs each scene argument into GPU buffers and writes them to a zip archive.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errNoScenes
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		name := ctx.Args().Get(idx)
		s, err := loadScene(name, ctx.String("strategy"))
		if err != nil {
			return err
		}

		camera := renderer.NewCamera(s.Camera, ctx.Int("width"), ctx.Int("height"))
		buffers, err := gpu.Pack(s, camera, 1)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		zipFile := compiledName(name, ctx.String("out-dir"))
		f, err := os.Create(zipFile)
		if err != nil {
			return err
		}
		err = buffers.WriteZip(f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("%s: %w", zipFile, err)
		}

		x, y := gpu.DispatchSize(ctx.Int("width"), ctx.Int("height"))
		logger.Noticef("compiled %s to %s (%d triangles, %d nodes, dispatch %dx%d)",
			name, zipFile, len(buffers.Triangles), len(buffers.Nodes), x, y)
	}
	return nil
}
