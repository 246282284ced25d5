package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/junkd0g/worldmap/internal/mapcss"
	"github.com/junkd0g/worldmap/internal/style"
)

func TestGenerateHTML(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "map.html")

	if err := GenerateHTML(sampleData, outputPath, DefaultConfig()); err != nil {
		t.Fatalf("Failed to generate HTML: %v", err)
	}

	out, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("HTML file was not created: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`<style id="` + style.NodeID + `">`,
		".vue-world-map #US { fill: #fde2e2; }",
		".vue-world-map #GB { fill: #d83737; }",
		`id="map-svg"`,
		`viewBox="0 0 1008 650"`,
		`class="land"`,
		`id="` + LegendID + `"`,
		"United Kingdom",
		"window.mapData",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
	if strings.Contains(html, "#unknown") {
		t.Error("unknown pseudo-country must not get a rule")
	}
	if strings.Contains(html, "e.pageX") || !strings.Contains(html, "e.clientX - rect.left - frame.clientLeft") {
		t.Error("legend must be placed relative to the map frame")
	}
}

func TestGenerateHTMLWithCustomWidgets(t *testing.T) {
	config := HTMLConfig{
		Title:   "Custom <Report>",
		Theme:   "dark",
		ViewBox: "0 0 100 100",
		Colors:  mapcss.DefaultColorConfig(),
		Widgets: []WidgetType{WidgetMap},
	}

	page, err := NewPage(sampleData, nil, config, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to build page: %v", err)
	}

	var sb strings.Builder
	if err := page.Render(&sb); err != nil {
		t.Fatalf("Failed to render page: %v", err)
	}
	html := sb.String()

	if !strings.Contains(html, "Custom &lt;Report&gt;") {
		t.Error("title must be escaped")
	}
	if !strings.Contains(html, `viewBox="0 0 100 100"`) {
		t.Error("custom viewBox was not applied")
	}
	if strings.Contains(html, `id="`+DataTableID+`"`) {
		t.Error("data table was not requested")
	}
}

func TestPageFollowsStore(t *testing.T) {
	page, err := NewPage(sampleData, nil, DefaultConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to build page: %v", err)
	}

	page.Store().SetCountryData(mapcss.CountryData{
		{Code: "FR", Value: 1},
		{Code: "DE", Value: 3},
	})

	var sb strings.Builder
	if err := page.Render(&sb); err != nil {
		t.Fatalf("Failed to render page: %v", err)
	}
	html := sb.String()

	if !strings.Contains(page.CSS(), "#DE { fill: #d83737; }") {
		t.Errorf("stylesheet was not recomputed: %s", page.CSS())
	}
	if strings.Contains(html, "#US {") {
		t.Error("stale rules left in the page")
	}
	if !strings.Contains(html, "<td>Germany</td>") {
		t.Error("data table was not refreshed")
	}
	if !strings.Contains(html, `<span class="swatch" style="background:#d83737"></span>`) {
		t.Error("fill swatches were not refreshed")
	}
	if !strings.Contains(html, `"DE":3`) {
		t.Error("data script was not refreshed")
	}

	if err := page.Close(); err != nil {
		t.Fatalf("Failed to close page: %v", err)
	}
	sb.Reset()
	if err := page.Render(&sb); err != nil {
		t.Fatalf("Failed to render page: %v", err)
	}
	if strings.Contains(sb.String(), style.NodeID) {
		t.Error("style node must be removed on close")
	}
}

func TestPageIgnoresRejectedColors(t *testing.T) {
	page, err := NewPage(sampleData, nil, DefaultConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to build page: %v", err)
	}
	defer page.Close()
	before := page.CSS()

	colors := mapcss.DefaultColorConfig()
	colors.LowColor = "not-a-color"
	page.Store().SetColors(colors)

	var sb strings.Builder
	if err := page.Render(&sb); err != nil {
		t.Fatalf("Failed to render page: %v", err)
	}
	html := sb.String()

	if page.CSS() != before {
		t.Errorf("stylesheet changed after rejected colors: %s", page.CSS())
	}
	if strings.Contains(html, "not-a-color") {
		t.Error("color scale shows colors the stylesheet rejected")
	}
	if !strings.Contains(html, "linear-gradient(90deg, #fde2e2, #d83737)") {
		t.Error("color scale lost the colors in use")
	}
}
