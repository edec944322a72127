package cmd

import (
	"runtime"

	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/urfave/cli"
)

var logger = log.New("cli")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// defaultWorkers returns the number of logical CPUs reported by the host
func defaultWorkers() int {
	count, err := cpu.Counts(true)
	if err != nil || count < 1 {
		logger.Debugf("cpu count unavailable (%v), using runtime.NumCPU", err)
		return runtime.NumCPU()
	}
	return count
}
