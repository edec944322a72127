package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/urfave/cli"
)

// deviceTable lists the host CPUs that can run render workers
func deviceTable() (string, error) {
	infos, err := cpu.Info()
	if err != nil {
		return "", err
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return "", err
	}
	physical, err := cpu.Counts(false)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("\nSystem provides %d logical / %d physical cpu core(s):\n\n", logical, physical))

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Model", "Vendor", "Cores", "MHz", "Cache"})
	for idx, info := range infos {
		table.Append([]string{
			fmt.Sprintf("%02d", idx),
			info.ModelName,
			info.VendorID,
			fmt.Sprintf("%d", info.Cores),
			fmt.Sprintf("%.0f", info.Mhz),
			fmt.Sprintf("%d KB", info.CacheSize),
		})
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		table.SetFooter([]string{"", "", "", "MEMORY", fmt.Sprintf("%d MB", vm.Total>>20), fmt.Sprintf("%.0f %% used", vm.UsedPercent)})
	}
	table.Render()
	return buf.String(), nil
}

// ListDevices prints the host CPUs available to the renderer.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	table, err := deviceTable()
	if err != nil {
		return fmt.Errorf("cmd: query cpu info: %w", err)
	}
	logger.Notice(table)
	logger.Noticef("render uses %d worker(s) by default", defaultWorkers())
	return nil
}
