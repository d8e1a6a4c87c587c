package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "nexus",
	Short: "NEXUS - trading signal intake and lifecycle pipeline",
	Long: `NEXUS turns raw trade-signal text into structured, confidence-scored
signals, gates them through validation and risk checks, and drives them
through an operator-approved execution lifecycle with streamed advisory
analysis.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
