// seamc is the Seam compiler backend driver. It consumes resolved modules
// produced by the frontend passes and emits LLVM IR assembly.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "seamc",
	Short:         "Seam compiler backend",
	Long:          "seamc lowers resolved Seam modules to LLVM IR assembly.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(lowerCmd)
	rootCmd.PersistentFlags().String("config", "", "path to seam.toml (default: ./seam.toml if present)")
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		color.New(color.FgWhite).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
