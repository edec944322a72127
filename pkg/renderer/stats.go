package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// WorkerStats summarizes one worker's share of a frame
type WorkerStats struct {
	Worker  int
	Regions int
	Pixels  int
	Busy    time.Duration
}

// FrameStats contains statistics about one traced frame
type FrameStats struct {
	Frame      int // Frame number used for accumulation
	Width      int
	Height     int
	Samples    int // Radiance samples traced this frame
	Partition  PartitionStrategy
	Regions    int
	RenderTime time.Duration
	Workers    []WorkerStats
}

// SamplesPerSecond returns the frame's sample throughput
func (s FrameStats) SamplesPerSecond() float64 {
	if s.RenderTime <= 0 {
		return 0
	}
	return float64(s.Samples) / s.RenderTime.Seconds()
}

// RenderStatsTable builds a tabular representation of per-worker frame statistics
func RenderStatsTable(stats FrameStats) string {
	totalPixels := stats.Width * stats.Height

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Regions", "Pixels", "% of frame", "Busy time"})
	for _, w := range stats.Workers {
		percent := 0.0
		if totalPixels > 0 {
			percent = 100 * float64(w.Pixels) / float64(totalPixels)
		}
		table.Append([]string{
			fmt.Sprintf("%d", w.Worker),
			fmt.Sprintf("%d", w.Regions),
			fmt.Sprintf("%d", w.Pixels),
			fmt.Sprintf("%02.1f %%", percent),
			w.Busy.String(),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("frame %d", stats.Frame),
		stats.Partition.String(),
		fmt.Sprintf("%.0f samples/s", stats.SamplesPerSecond()),
		"TOTAL",
		stats.RenderTime.String(),
	})

	table.Render()
	return buf.String()
}
