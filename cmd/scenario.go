package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargesim/app"
	"github.com/kilianp07/chargesim/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <file-or-dir>...",
	Short: "Run scenario files and check their expectations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var list []*scenarios.Scenario
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return err
		}
		if info.IsDir() {
			scs, err := scenarios.LoadDir(arg)
			if err != nil {
				return err
			}
			list = append(list, scs...)
			continue
		}
		sc, err := scenarios.Load(arg)
		if err != nil {
			return err
		}
		list = append(list, sc)
	}

	return withService(ctx, cfg, func(svc *app.Service) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, sc := range list {
			res, err := scenarios.Run(ctx, sc, svc.SimulatorOptions()...)
			if err != nil {
				return err
			}
			if res.Passed() {
				fmt.Fprintf(out, "PASS %s (concurrency %.2f%%)\n", res.Name, res.Result.ConcurrencyFactor)
				continue
			}
			failed++
			fmt.Fprintf(out, "FAIL %s\n", res.Name)
			for _, f := range res.Failures {
				fmt.Fprintf(out, "    %s\n", f)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(list))
		}
		return nil
	})
}
