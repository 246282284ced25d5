package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/countrydata"
	"github.com/junkd0g/worldmap/internal/diagram"
	"github.com/junkd0g/worldmap/internal/mapcss"
	"github.com/junkd0g/worldmap/internal/watch"
)

var renderCmd = &cobra.Command{
	Use:   "render <data.json>",
	Short: "Render an interactive HTML map",
	Long: `Render an interactive HTML page holding the map, its color scale and a
table of the values. Hovering a country shows its name in a legend.

With --watch the data file is watched and the page is rewritten whenever
it changes, until interrupted.

Examples:
  worldmap render visitors.json -o visitors.html
  worldmap render visitors.json -o visitors.html --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")
		watchData, _ := cmd.Flags().GetBool("watch")

		return renderMap(cmd.Context(), args[0], outputPath, title, watchData)
	},
}

func init() {
	renderCmd.Flags().StringP("output", "o", "map.html", "output HTML file")
	renderCmd.Flags().String("title", "", "page title")
	renderCmd.Flags().BoolP("watch", "w", false, "rewrite the page when the data file changes")
}

func renderMap(ctx context.Context, dataPath, outputPath, title string, watchData bool) (err error) {
	data, err := countrydata.LoadFile(dataPath)
	if err != nil {
		return err
	}
	shapes, err := loadShapes()
	if err != nil {
		return err
	}

	htmlConfig := diagram.DefaultConfig()
	htmlConfig.Title = cfg.Page.Title
	htmlConfig.Description = cfg.Page.Description
	htmlConfig.Theme = cfg.Page.Theme
	htmlConfig.ViewBox = cfg.Map.ViewBox
	htmlConfig.Colors = cfg.Colors
	if title != "" {
		htmlConfig.Title = title
	}

	page, err := diagram.NewPage(data, shapes, htmlConfig, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, page.Close()) }()

	if err := page.WriteFile(outputPath); err != nil {
		return err
	}
	logger.Info("Map written", zap.String("output", outputPath), zap.Int("countries", len(data)))

	if !watchData {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watch.New(dataPath, page.Store(), logger,
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithReloadHook(func(data mapcss.CountryData) {
			if err := page.WriteFile(outputPath); err != nil {
				logger.Error("Failed to rewrite map", zap.String("output", outputPath), zap.Error(err))
				return
			}
			logger.Info("Map rewritten", zap.String("output", outputPath), zap.Int("countries", len(data)))
		}),
	)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dataPath, err)
	}
	logger.Info("Watching for changes", zap.String("data", dataPath))

	<-ctx.Done()

	stats := w.Stats()
	logger.Info("Stopped watching", zap.Int("reloads", stats.Reloads), zap.Int("errors", stats.Errors))
	return w.Stop()
}
