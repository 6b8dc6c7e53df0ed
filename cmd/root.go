package cmd

import (
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
}

var rootCmd = &cobra.Command{
	Use:          "satbench",
	SilenceUsage: true,
	Short:        "Benchmark Data Vault satellite date-window optimizations",
	Long: `satbench decides empirically whether restricting a satellite table's
current-row lookup to a recent date window is safe.

It runs a baseline query variant (full history) and an optimized variant
(date window) against the same data, measures end-to-end wall time and
result divergence, extrapolates sample measurements to full-population
scale, and emits a calibrated recommendation. All queries are read-only.`,
	Example: `  # Quick sampled check (minutes)
  satbench run satbench.yaml --profile prod

  # Full multi-phase profile
  satbench run satbench.yaml --mode deep --profile prod

  # Create a starter config
  satbench init`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
