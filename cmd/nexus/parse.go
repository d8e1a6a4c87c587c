package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nexustrader/nexus/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse raw signal text into a scored draft",
	Long: `Parse extracts instrument, side and price levels from raw signal text
and prints the confidence-scored draft as JSON. Nothing is stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	draft := parser.Parse(strings.Join(args, " "))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(draft); err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	return nil
}
