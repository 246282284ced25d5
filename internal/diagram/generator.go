package diagram

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

// LegendSpec describes the color ramp of a map.
type LegendSpec struct {
	Title     string
	LowColor  string
	HighColor string
	Min       float64
	Max       float64
	// Steps is the number of swatches between Min and Max, at least 2.
	Steps int
}

// NewLegendSpec derives a legend from the data and colors of a map.
// Entries that take no part in the color domain are ignored.
func NewLegendSpec(title string, data mapcss.CountryData, colors mapcss.ColorConfig) LegendSpec {
	spec := LegendSpec{
		Title:     title,
		LowColor:  colors.LowColor,
		HighColor: colors.HighColor,
		Steps:     5,
	}

	if lo, hi, ok := mapcss.Domain(data); ok {
		spec.Min, spec.Max = lo, hi
	}
	return spec
}

// GenerateLegend renders the legend and saves it to the output path.
func GenerateLegend(spec LegendSpec, outputPath string) error {
	ctx := context.Background()

	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer g.Close()

	dotString, err := GenerateLegendDOT(spec)
	if err != nil {
		return err
	}

	graph, err := graphviz.ParseBytes([]byte(dotString))
	if err != nil {
		return fmt.Errorf("failed to parse DOT: %w", err)
	}
	defer graph.Close()

	format := graphviz.PNG
	if strings.HasSuffix(outputPath, ".svg") {
		format = graphviz.SVG
	}

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, format, &buf); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	if err := writeFileBytes(outputPath, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// GenerateLegendDOT builds a row of swatches from LowColor to HighColor,
// each labeled with the data value it stands for.
func GenerateLegendDOT(spec LegendSpec) (string, error) {
	scale, err := mapcss.NewLinearScale(spec.LowColor, spec.HighColor)
	if err != nil {
		return "", err
	}
	steps := spec.Steps
	if steps < 2 {
		steps = 2
	}

	var sb strings.Builder

	sb.WriteString("digraph Legend {\n")
	sb.WriteString("  rankdir=LR;\n")
	if spec.Title != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", spec.Title))
		sb.WriteString("  labelloc=t;\n")
	}
	sb.WriteString("  fontsize=16;\n")
	sb.WriteString("  fontname=\"Helvetica-Bold\";\n")
	sb.WriteString("  pad=0.3;\n")
	sb.WriteString("  nodesep=0;\n")
	sb.WriteString("  ranksep=0;\n\n")

	sb.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\", fontsize=11, width=0.9, height=0.5, penwidth=0];\n")
	sb.WriteString("  edge [style=invis];\n\n")

	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		value := spec.Min + t*(spec.Max-spec.Min)
		fill := scale(t).Hex()
		sb.WriteString(fmt.Sprintf("  step%d [fillcolor=%q, fontcolor=%q, label=%q];\n",
			i, fill, labelColor(t), formatValue(value)))
	}

	sb.WriteString("\n")
	for i := 1; i < steps; i++ {
		sb.WriteString(fmt.Sprintf("  step%d -> step%d;\n", i-1, i))
	}

	sb.WriteString("}\n")

	return sb.String(), nil
}

func labelColor(t float64) string {
	if t > 0.5 {
		return "white"
	}
	return "#333333"
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func writeFileBytes(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
