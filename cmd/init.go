package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"satbench/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Create a starter config file",
	Long: `Write a commented example configuration to satbench.yaml (or the given
path). An existing file is not overwritten unless --force is set.`,
	Example: `  satbench init
  satbench init warehouse.yaml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := "satbench.yaml"
		if len(args) > 0 {
			path = args[0]
		}

		if !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		if err := os.WriteFile(path, []byte(config.Example), 0644); err != nil {
			return err
		}

		fmt.Printf("Wrote %s. Edit the table and column names, then run 'satbench run %s'.\n", path, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
}
