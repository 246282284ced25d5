package diagram

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/junkd0g/worldmap/internal/mapcss"
	"github.com/junkd0g/worldmap/internal/style"
	"github.com/junkd0g/worldmap/internal/worldmap"
)

// WidgetType defines the blocks a map page can hold.
type WidgetType string

const (
	WidgetMap        WidgetType = "map"
	WidgetColorScale WidgetType = "color_scale"
	WidgetDataTable  WidgetType = "data_table"
)

// Ids of the page elements.
const (
	LegendID     = "vue-map-legend"
	ColorScaleID = "map-color-scale"
	DataTableID  = "map-data-table"
	DataScriptID = "map-data"
)

// HTMLConfig configures the map page.
type HTMLConfig struct {
	Title       string
	Description string
	Widgets     []WidgetType
	Theme       string // "dark" or "light"
	ViewBox     string
	Colors      mapcss.ColorConfig
}

// DefaultConfig returns a full-featured default configuration.
func DefaultConfig() HTMLConfig {
	return HTMLConfig{
		Title:       "World Map",
		Description: "Hover a country to see its value",
		Theme:       "light",
		ViewBox:     worldmap.DefaultViewBox,
		Colors:      mapcss.DefaultColorConfig(),
		Widgets: []WidgetType{
			WidgetMap,
			WidgetColorScale,
			WidgetDataTable,
		},
	}
}

// Page is a rendered map page whose stylesheet follows its store.
type Page struct {
	config   HTMLConfig
	surface  *worldmap.Surface
	store    *style.Store
	doc      *style.HTMLDocument
	injector *style.Injector
	logger   *zap.Logger
	cancel   func()
}

// NewPage builds the page and mounts its style injector.
func NewPage(data mapcss.CountryData, shapes []worldmap.Shape, config HTMLConfig, logger *zap.Logger) (*Page, error) {
	if shapes == nil {
		shapes = worldmap.DefaultShapes()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Page{
		logger:  logger.Named("page"),
		config:  config,
		surface: worldmap.NewSurface(shapes, config.ViewBox),
		store:   style.NewStore(style.Props{CountryData: data, Colors: config.Colors}),
	}

	body, err := p.renderBody(data)
	if err != nil {
		return nil, err
	}
	doc, err := style.NewHTMLDocument(p.renderHead() + body)
	if err != nil {
		return nil, err
	}
	p.doc = doc

	p.injector = style.NewInjector(p.store, logger)
	if err := p.injector.Mount(doc); err != nil {
		return nil, fmt.Errorf("failed to mount stylesheet: %w", err)
	}
	p.cancel = p.store.Subscribe(p.refresh)
	p.refresh(p.store.Props())
	return p, nil
}

// refresh rewrites the data-dependent blocks after a store change. Props the
// injector rejected leave the page as it is, so the blocks keep matching the
// stylesheet in use.
func (p *Page) refresh(props style.Props) {
	if err := p.injector.Err(); err != nil {
		p.logger.Warn("Keeping previous page blocks", zap.Error(err))
		return
	}
	p.config.Colors = props.Colors
	blocks := map[string]string{
		ColorScaleID: p.colorScaleInner(props.CountryData),
		DataTableID:  p.dataTableInner(props.CountryData),
		DataScriptID: dataScript(props.CountryData),
	}
	for id, inner := range blocks {
		if p.doc.ElementByID(id) == nil {
			continue
		}
		if err := p.doc.SetInnerHTML(id, inner); err != nil {
			p.logger.Warn("Failed to refresh block", zap.String("id", id), zap.Error(err))
		}
	}
}

// Store returns the props store driving the page stylesheet.
func (p *Page) Store() *style.Store {
	return p.store
}

// Surface returns the map surface drawn on the page.
func (p *Page) Surface() *worldmap.Surface {
	return p.surface
}

// CSS returns the current map stylesheet.
func (p *Page) CSS() string {
	return p.injector.CSS()
}

// Render writes the page.
func (p *Page) Render(w io.Writer) error {
	return p.doc.Render(w)
}

// WriteFile writes the page to outputPath.
func (p *Page) WriteFile(outputPath string) error {
	var sb strings.Builder
	if err := p.Render(&sb); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	if err := writeFileBytes(outputPath, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

// Close detaches the page from its store and removes the stylesheet node.
func (p *Page) Close() error {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return p.injector.Unmount()
}

// GenerateHTML creates an interactive map page and saves it to outputPath.
func GenerateHTML(data mapcss.CountryData, outputPath string, config HTMLConfig) error {
	page, err := NewPage(data, nil, config, nil)
	if err != nil {
		return err
	}
	defer page.Close()

	return page.WriteFile(outputPath)
}

func (p *Page) renderHead() string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>%s</style>
</head>`, html.EscapeString(p.config.Title), p.getThemeCSS())
}

func (p *Page) getThemeCSS() string {
	if p.config.Theme == "dark" {
		return darkThemeCSS
	}
	return lightThemeCSS
}

func (p *Page) renderBody(data mapcss.CountryData) (string, error) {
	var sb strings.Builder

	sb.WriteString(`<body><div class="container">`)
	sb.WriteString(p.renderHeader())

	for _, widget := range p.config.Widgets {
		out, err := p.renderWidget(widget, data)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}

	sb.WriteString(`<footer><p>Generated by worldmap</p></footer>`)
	sb.WriteString(`</div>`)
	sb.WriteString(p.renderScripts(data))
	sb.WriteString(`</body></html>`)

	return sb.String(), nil
}

func (p *Page) renderHeader() string {
	return fmt.Sprintf(`
<header>
    <h1>%s</h1>
    <p>%s</p>
</header>`, html.EscapeString(p.config.Title), html.EscapeString(p.config.Description))
}

func (p *Page) renderWidget(widget WidgetType, data mapcss.CountryData) (string, error) {
	switch widget {
	case WidgetMap:
		return p.renderMap()
	case WidgetColorScale:
		return p.renderColorScale(data), nil
	case WidgetDataTable:
		return p.renderDataTable(data), nil
	default:
		return "", nil
	}
}

func (p *Page) renderMap() (string, error) {
	svg, err := p.surface.SVG()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
<div class="widget map-box">
    %s
    <div id="%s" class="vue-map-legend" hidden><strong class="legend-name"></strong> <span class="legend-value"></span></div>
</div>`, svg, LegendID), nil
}

func (p *Page) renderColorScale(data mapcss.CountryData) string {
	return fmt.Sprintf(`
<div id="%s" class="widget scale-box">%s</div>`, ColorScaleID, p.colorScaleInner(data))
}

func (p *Page) colorScaleInner(data mapcss.CountryData) string {
	spec := NewLegendSpec("", data, p.config.Colors)
	return fmt.Sprintf(`
    <span>%s</span>
    <div class="scale-bar" style="background:linear-gradient(90deg, %s, %s)"></div>
    <span>%s</span>
`,
		formatValue(spec.Min),
		html.EscapeString(p.config.Colors.LowColor),
		html.EscapeString(p.config.Colors.HighColor),
		formatValue(spec.Max))
}

func (p *Page) renderDataTable(data mapcss.CountryData) string {
	return fmt.Sprintf(`
<div id="%s" class="widget table-box">%s</div>`, DataTableID, p.dataTableInner(data))
}

func (p *Page) dataTableInner(data mapcss.CountryData) string {
	fills := p.fills()

	var rows strings.Builder
	for _, e := range data {
		name, ok := p.surface.Name(e.Code)
		if !ok {
			name = "-"
		}
		swatch := "-"
		if fill, ok := fills[e.Code]; ok {
			swatch = fmt.Sprintf(`<span class="swatch" style="background:%s"></span>`, html.EscapeString(fill))
		}
		rows.WriteString(fmt.Sprintf(`
        <tr><td><strong>%s</strong></td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			html.EscapeString(e.Code), html.EscapeString(name), mapcss.FormatT(e.Value), swatch))
	}

	return fmt.Sprintf(`
    <table>
        <thead>
            <tr><th>Code</th><th>Country</th><th>Value</th><th>Fill</th></tr>
        </thead>
        <tbody>%s</tbody>
    </table>
`, rows.String())
}

// fills returns the fill of every country as currently injected.
func (p *Page) fills() map[string]string {
	if p.injector == nil {
		return nil
	}
	fills, err := mapcss.Fills(p.injector.CSS())
	if err != nil {
		p.logger.Warn("Failed to read injected stylesheet", zap.Error(err))
		return nil
	}
	return fills
}

func (p *Page) renderScripts(data mapcss.CountryData) string {
	return fmt.Sprintf(`
<script id="%s">%s</script>
<script>%s</script>`, DataScriptID, dataScript(data), hoverScript)
}

func dataScript(data mapcss.CountryData) string {
	values := make(map[string]float64, len(data))
	for _, e := range data {
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			continue
		}
		values[e.Code] = e.Value
	}
	dataJSON, _ := json.Marshal(values)
	return fmt.Sprintf("window.mapData = %s;", dataJSON)
}

// hoverScript mirrors legend.Controller in the browser: hovering the country
// already shown is ignored, leaving always hides the legend. The legend is
// placed in the coordinates of the map frame, not the page.
const hoverScript = `
(function() {
    const svg = document.getElementById('map-svg');
    const box = document.getElementById('vue-map-legend');
    if (!svg || !box) return;
    // The legend is absolutely positioned inside the map frame.
    const frame = svg.parentElement;
    let current = null;

    svg.querySelectorAll('.land').forEach(path => {
        path.addEventListener('mouseenter', e => {
            if (current === path.id) return;
            current = path.id;
            box.querySelector('.legend-name').textContent = path.dataset.name;
            box.querySelector('.legend-value').textContent = path.id in window.mapData ? window.mapData[path.id] : '';
            const rect = frame.getBoundingClientRect();
            box.style.left = (e.clientX - rect.left - frame.clientLeft) + 'px';
            box.style.top = (e.clientY - rect.top - frame.clientTop) + 'px';
            box.hidden = false;
        });
        path.addEventListener('mouseleave', () => {
            current = null;
            box.hidden = true;
        });
    });
})();
`

const darkThemeCSS = `
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    background: linear-gradient(135deg, #1a1a2e 0%, #16213e 100%);
    min-height: 100vh;
    color: #e4e4e4;
}
.container { max-width: 1200px; margin: 0 auto; padding: 20px; }
header { text-align: center; padding: 30px 0; border-bottom: 1px solid #333; margin-bottom: 30px; }
header h1 { font-size: 2.5rem; margin-bottom: 10px; }
header p { color: #888; font-size: 1.1rem; }
.widget { margin-bottom: 25px; }
.map-box { position: relative; background: rgba(255,255,255,0.05); border-radius: 12px; padding: 20px; border: 1px solid rgba(255,255,255,0.1); }
.scale-box { display: flex; align-items: center; gap: 12px; justify-content: center; }
.scale-bar { width: 240px; height: 12px; border-radius: 6px; }
.table-box { background: rgba(255,255,255,0.05); border-radius: 12px; padding: 20px; border: 1px solid rgba(255,255,255,0.1); overflow-x: auto; }
table { width: 100%; border-collapse: collapse; }
.swatch { display: inline-block; width: 14px; height: 14px; border-radius: 3px; vertical-align: middle; }
th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #333; }
th { color: #888; font-weight: 600; }
.vue-map-legend { color: #333; }
footer { text-align: center; padding: 20px; color: #666; }
`

const lightThemeCSS = `
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    background: linear-gradient(135deg, #f5f7fa 0%, #e4e8ec 100%);
    min-height: 100vh;
    color: #333;
}
.container { max-width: 1200px; margin: 0 auto; padding: 20px; }
header { text-align: center; padding: 30px 0; border-bottom: 1px solid #ddd; margin-bottom: 30px; }
header h1 { font-size: 2.5rem; margin-bottom: 10px; }
header p { color: #666; font-size: 1.1rem; }
.widget { margin-bottom: 25px; }
.map-box { position: relative; background: #fff; border-radius: 12px; padding: 20px; border: 1px solid #e0e0e0; box-shadow: 0 2px 8px rgba(0,0,0,0.05); }
.scale-box { display: flex; align-items: center; gap: 12px; justify-content: center; }
.scale-bar { width: 240px; height: 12px; border-radius: 6px; }
.table-box { background: #fff; border-radius: 12px; padding: 20px; border: 1px solid #e0e0e0; overflow-x: auto; }
table { width: 100%; border-collapse: collapse; }
.swatch { display: inline-block; width: 14px; height: 14px; border-radius: 3px; vertical-align: middle; }
th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #eee; }
th { color: #666; font-weight: 600; }
footer { text-align: center; padding: 20px; color: #999; }
`
