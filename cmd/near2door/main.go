package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var memoryFlag bool

var rootCmd = &cobra.Command{
	Use:          "near2door",
	Short:        "Near2Door marketplace backend",
	Long:         "Near2Door connects customers, local shops and delivery agents. Use this CLI to run and administer the API.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&memoryFlag, "memory", false, "use the in-process store instead of MongoDB")

	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(indexesCmd)
}
