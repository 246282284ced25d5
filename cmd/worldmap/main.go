package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/config"
	"github.com/junkd0g/worldmap/internal/worldmap"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "worldmap",
	Short: "Render world choropleth maps from per-country values",
	Long: `worldmap colors the countries of a world map by value.

Country data is a JSON object mapping ISO codes to numbers:

  {"US": 4, "CA": 7, "GB": 8, "IE": 14}

Each value is rescaled over the whole data set and mapped onto a color
ramp between the configured low and high colors.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = cfg.Logging.Logger()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(cssCmd, renderCmd, legendCmd)
}

// loadShapes returns the configured country outlines, or the built-in ones.
func loadShapes() ([]worldmap.Shape, error) {
	if cfg.Map.ShapesPath == "" {
		return worldmap.DefaultShapes(), nil
	}
	shapes, err := worldmap.LoadShapes(cfg.Map.ShapesPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded country shapes", zap.String("path", cfg.Map.ShapesPath), zap.Int("count", len(shapes)))
	return shapes, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
