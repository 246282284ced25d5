package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/config"
	"github.com/junkd0g/worldmap/internal/countrydata"
	"github.com/junkd0g/worldmap/internal/diagram"
	"github.com/junkd0g/worldmap/internal/legend"
	"github.com/junkd0g/worldmap/internal/mapcss"
	"github.com/junkd0g/worldmap/internal/worldmap"
)

// Toolset holds what the map tools share between calls: the configuration
// and the hover state of the map.
type Toolset struct {
	cfg     *config.Config
	shapes  []worldmap.Shape
	surface *worldmap.Surface
	legend  *legend.Controller
	logger  *zap.Logger
}

// NewToolset returns a toolset drawing the given shapes. Nil shapes select
// the built-in outlines.
func NewToolset(cfg *config.Config, shapes []worldmap.Shape, logger *zap.Logger) *Toolset {
	if cfg == nil {
		cfg = config.Default()
	}
	if shapes == nil {
		shapes = worldmap.DefaultShapes()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ts := &Toolset{
		cfg:     cfg,
		shapes:  shapes,
		surface: worldmap.NewSurface(shapes, cfg.Map.ViewBox),
		legend:  legend.New(),
		logger:  logger.Named("tools"),
	}
	ts.surface.Connect(ts.legend)
	return ts
}

// Register registers all tools with the MCP server.
func Register(s *server.MCPServer, ts *Toolset) {
	registerMapCSSTool(s, ts)
	registerRenderMapTool(s, ts)
	registerLegendTool(s, ts)
	registerHoverTools(s, ts)
}

func colorOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("low_color",
			mcp.Description("Hex color of the smallest value. Defaults to the configured low color"),
		),
		mcp.WithString("high_color",
			mcp.Description("Hex color of the largest value. Defaults to the configured high color"),
		),
		mcp.WithString("default_country_fill_color",
			mcp.Description("Fill color of countries without data"),
		),
		mcp.WithString("country_stroke_color",
			mcp.Description("Color of the country borders"),
		),
	}
}

func countryDataOption() mcp.ToolOption {
	return mcp.WithString("country_data",
		mcp.Required(),
		mcp.Description(`JSON object mapping ISO country codes to numbers, e.g. {"US": 4, "CA": 7}. Key order is kept`),
	)
}

func registerMapCSSTool(s *server.MCPServer, ts *Toolset) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Generates the stylesheet of a world choropleth map. Each country gets a fill color interpolated between the low and high colors according to its value."),
		countryDataOption(),
	}
	tool := mcp.NewTool("generate_map_css", append(opts, colorOptions()...)...)

	s.AddTool(tool, ts.mapCSSHandler)
}

func registerRenderMapTool(s *server.MCPServer, ts *Toolset) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Renders an interactive HTML world map colored by the given country values, with a hover legend."),
		countryDataOption(),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("The output path of the HTML file"),
		),
		mcp.WithString("title",
			mcp.Description("Page title"),
		),
		mcp.WithString("view_box",
			mcp.Description("SVG viewBox of the map. Defaults to the configured view box"),
		),
	}
	tool := mcp.NewTool("render_world_map", append(opts, colorOptions()...)...)

	s.AddTool(tool, ts.renderMapHandler)
}

func registerLegendTool(s *server.MCPServer, ts *Toolset) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Renders the color legend of a map as an image. Supports PNG and SVG output formats."),
		countryDataOption(),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("The output path for the legend. Supports .png and .svg extensions"),
		),
		mcp.WithString("title",
			mcp.Description("Legend title"),
		),
	}
	tool := mcp.NewTool("render_map_legend", append(opts, colorOptions()...)...)

	s.AddTool(tool, ts.legendHandler)
}

func registerHoverTools(s *server.MCPServer, ts *Toolset) {
	hover := mcp.NewTool("hover_country",
		mcp.WithDescription("Moves the pointer over a country of the map and returns the legend state. Hovering the country already shown leaves the legend unchanged."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("ISO code of the country"),
		),
		mcp.WithNumber("left",
			mcp.Description("Pointer x position in pixels"),
		),
		mcp.WithNumber("top",
			mcp.Description("Pointer y position in pixels"),
		),
	)
	s.AddTool(hover, ts.hoverHandler)

	leave := mcp.NewTool("leave_country",
		mcp.WithDescription("Moves the pointer off the map and returns the cleared legend state."),
	)
	s.AddTool(leave, ts.leaveHandler)
}

func (ts *Toolset) mapCSSHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, colors, errResult := ts.parseMapArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	css, err := mapcss.Stylesheet(data, colors)
	if err != nil {
		return newToolResultError(fmt.Sprintf("failed to generate stylesheet: %v", err)), nil
	}

	ts.logger.Debug("Generated stylesheet", zap.Int("countries", len(data)))
	return mcp.NewToolResultText(css), nil
}

func (ts *Toolset) renderMapHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, colors, errResult := ts.parseMapArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	outputPath, _ := request.Params.Arguments["output_path"].(string)
	if outputPath == "" {
		return newToolResultError("output_path is required"), nil
	}

	htmlConfig := diagram.DefaultConfig()
	htmlConfig.Title = ts.cfg.Page.Title
	htmlConfig.Description = ts.cfg.Page.Description
	htmlConfig.Theme = ts.cfg.Page.Theme
	htmlConfig.ViewBox = ts.cfg.Map.ViewBox
	htmlConfig.Colors = colors
	if title, ok := request.Params.Arguments["title"].(string); ok && title != "" {
		htmlConfig.Title = title
	}
	if vb, ok := request.Params.Arguments["view_box"].(string); ok && vb != "" {
		if err := config.ValidateViewBox(vb); err != nil {
			return newToolResultError(fmt.Sprintf("invalid view_box: %v", err)), nil
		}
		htmlConfig.ViewBox = vb
	}

	page, err := diagram.NewPage(data, ts.shapes, htmlConfig, ts.logger)
	if err != nil {
		return newToolResultError(fmt.Sprintf("failed to build map: %v", err)), nil
	}
	defer page.Close()

	if err := page.WriteFile(outputPath); err != nil {
		return newToolResultError(fmt.Sprintf("failed to write map: %v", err)), nil
	}

	return mcp.NewToolResultText(buildSummary(data, ts.surface, outputPath)), nil
}

func (ts *Toolset) legendHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, colors, errResult := ts.parseMapArguments(request)
	if errResult != nil {
		return errResult, nil
	}

	outputPath, _ := request.Params.Arguments["output_path"].(string)
	if outputPath == "" {
		return newToolResultError("output_path is required"), nil
	}
	title, _ := request.Params.Arguments["title"].(string)

	spec := diagram.NewLegendSpec(title, data, colors)
	if err := diagram.GenerateLegend(spec, outputPath); err != nil {
		return newToolResultError(fmt.Sprintf("failed to generate legend: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Legend generated successfully!\n\nOutput: %s\nRange: %s - %s\n",
		outputPath, mapcss.FormatT(spec.Min), mapcss.FormatT(spec.Max))), nil
}

func (ts *Toolset) hoverHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, ok := request.Params.Arguments["code"].(string)
	if !ok || code == "" {
		return newToolResultError("code is required"), nil
	}
	left, _ := request.Params.Arguments["left"].(float64)
	top, _ := request.Params.Arguments["top"].(float64)

	changed, err := ts.surface.PointerEnter(code, legend.Position{Left: left, Top: top})
	if err != nil {
		return newToolResultError(err.Error()), nil
	}

	return stateResult(ts.legend.State(), changed)
}

func (ts *Toolset) leaveHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changed := ts.surface.PointerLeave()
	return stateResult(ts.legend.State(), changed)
}

// Legend returns the hover state shared by the tools.
func (ts *Toolset) Legend() *legend.Controller {
	return ts.legend
}

func stateResult(state legend.State, changed bool) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(struct {
		Legend  legend.State `json:"legend"`
		Changed bool         `json:"changed"`
	}{state, changed})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (ts *Toolset) parseMapArguments(request mcp.CallToolRequest) (mapcss.CountryData, mapcss.ColorConfig, *mcp.CallToolResult) {
	colors := ts.cfg.Colors

	raw, ok := request.Params.Arguments["country_data"].(string)
	if !ok {
		return nil, colors, newToolResultError("country_data is required")
	}
	data, err := countrydata.ParseString(raw)
	if err != nil {
		var verr *countrydata.ValueError
		if errors.As(err, &verr) {
			return nil, colors, newToolResultError(fmt.Sprintf("invalid country_data: value of %s must be a number", verr.Code))
		}
		return nil, colors, newToolResultError(fmt.Sprintf("invalid country_data: %v", err))
	}

	overrides := map[string]*string{
		"low_color":                  &colors.LowColor,
		"high_color":                 &colors.HighColor,
		"default_country_fill_color": &colors.DefaultCountryFillColor,
		"country_stroke_color":       &colors.CountryStrokeColor,
	}
	for key, field := range overrides {
		if v, ok := request.Params.Arguments[key].(string); ok && v != "" {
			*field = v
		}
	}

	return data, colors, nil
}

func newToolResultError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: message,
			},
		},
		IsError: true,
	}
}

func buildSummary(data mapcss.CountryData, surface *worldmap.Surface, outputPath string) string {
	var missing []string
	for _, e := range data {
		if e.Code == mapcss.UnknownKey {
			continue
		}
		if _, ok := surface.Name(e.Code); !ok {
			missing = append(missing, e.Code)
		}
	}

	summary := fmt.Sprintf("World map generated successfully!\n\nOutput: %s\n\nCountries with data: %d\n",
		filepath.Clean(outputPath), len(data))

	if lo, hi, ok := mapcss.Domain(data); ok {
		summary += fmt.Sprintf("Value range: %s - %s\n", mapcss.FormatT(lo), mapcss.FormatT(hi))
	}
	if len(missing) > 0 {
		summary += fmt.Sprintf("Not on the map: %s\n", strings.Join(missing, ", "))
	}

	return summary
}
