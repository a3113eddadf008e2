package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargesim/app"
	"github.com/kilianp07/chargesim/core/simulation"
	"github.com/kilianp07/chargesim/pkg/export"
)

var (
	sweepFlags  simFlags
	sweepOpts   simulation.SweepOptions
	sweepFormat string
	sweepOut    string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compute the concurrency factor for a range of station counts",
	RunE:  sweep,
}

func init() {
	sweepFlags.register(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepOpts.From, "from", 1, "first station count")
	sweepCmd.Flags().IntVar(&sweepOpts.To, "to", 30, "last station count")
	sweepCmd.Flags().IntVarP(&sweepOpts.Workers, "workers", "w", runtime.NumCPU(), "parallel simulations")
	sweepCmd.Flags().StringVarP(&sweepFormat, "format", "f", export.FormatCSV, "output format: csv, json or html")
	sweepCmd.Flags().StringVarP(&sweepOut, "out", "o", "", "output file, stdout when empty")
	rootCmd.AddCommand(sweepCmd)
}

func sweep(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	simCfg, params := cfg.Simulation, cfg.Parameters
	if err := sweepFlags.apply(cmd, &simCfg, &params); err != nil {
		return err
	}

	return withService(ctx, cfg, func(svc *app.Service) error {
		points, err := simulation.Sweep(ctx, simCfg, params, sweepOpts, svc.SimulatorOptions()...)
		if err != nil {
			return err
		}
		if sweepOut == "" {
			return export.Write(cmd.OutOrStdout(), sweepFormat, points)
		}
		return writeFile(sweepOut, sweepFormat, points)
	})
}

// writeFile exports points to path, reporting a failed close when the
// write itself succeeded.
func writeFile(path, format string, points []simulation.SweepPoint) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return export.Write(f, format, points)
}
