package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/countrydata"
	"github.com/junkd0g/worldmap/internal/mapcss"
)

var cssCmd = &cobra.Command{
	Use:   "css <data.json>",
	Short: "Print the map stylesheet for a data file",
	Long: `Print the stylesheet of the map: one fill rule per country followed by
the base rules.

Examples:
  worldmap css visitors.json
  worldmap css visitors.json --low '#ffffff' --high '#003366'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := countrydata.LoadFile(args[0])
		if err != nil {
			return err
		}

		colors := cfg.Colors
		if low, _ := cmd.Flags().GetString("low"); low != "" {
			colors.LowColor = low
		}
		if high, _ := cmd.Flags().GetString("high"); high != "" {
			colors.HighColor = high
		}

		css, err := mapcss.Stylesheet(data, colors)
		if err != nil {
			return fmt.Errorf("failed to generate stylesheet: %w", err)
		}
		logger.Debug("Generated stylesheet", zap.String("data", args[0]), zap.Int("countries", len(data)))

		_, err = fmt.Fprintln(cmd.OutOrStdout(), css)
		return err
	},
}

func init() {
	cssCmd.Flags().String("low", "", "color of the smallest value")
	cssCmd.Flags().String("high", "", "color of the largest value")
}
