package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/junkd0g/worldmap/internal/countrydata"
	"github.com/junkd0g/worldmap/internal/diagram"
)

var legendCmd = &cobra.Command{
	Use:   "legend <data.json>",
	Short: "Render the color legend of a map as PNG or SVG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")
		steps, _ := cmd.Flags().GetInt("steps")

		data, err := countrydata.LoadFile(args[0])
		if err != nil {
			return err
		}

		spec := diagram.NewLegendSpec(title, data, cfg.Colors)
		spec.Steps = steps
		if err := diagram.GenerateLegend(spec, outputPath); err != nil {
			return fmt.Errorf("failed to generate legend: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Legend written to %s\n", outputPath)
		return nil
	},
}

func init() {
	legendCmd.Flags().StringP("output", "o", "legend.png", "output file (.png or .svg)")
	legendCmd.Flags().String("title", "", "legend title")
	legendCmd.Flags().Int("steps", 5, "number of color swatches")
}
