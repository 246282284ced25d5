package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/junkd0g/worldmap/internal/legend"
)

func newRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func newTestToolset(t *testing.T) *Toolset {
	return NewToolset(nil, nil, zaptest.NewLogger(t))
}

func TestRegister(t *testing.T) {
	s := server.NewMCPServer("worldmap", "test")
	Register(s, newTestToolset(t))
}

func TestMapCSSHandler(t *testing.T) {
	ts := newTestToolset(t)

	res, err := ts.mapCSSHandler(context.Background(), newRequest("generate_map_css", map[string]interface{}{
		"country_data": `{"US": 4, "CA": 7, "GB": 8, "IE": 14, "unknown": 1337}`,
		"low_color":    "#000000",
		"high_color":   "#ffffff",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	css := resultText(t, res)
	assert.True(t, strings.HasPrefix(css, ".vue-world-map #US { fill: #000000; } .vue-world-map #CA { fill: "))
	assert.Contains(t, css, ".vue-world-map #IE { fill: #ffffff; }")
	assert.NotContains(t, css, "#unknown")
	assert.Contains(t, css, ".vue-world-map .land { fill:#dadada; stroke:#909090;")
}

func TestMapCSSHandlerErrors(t *testing.T) {
	ts := newTestToolset(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing data", map[string]interface{}{}, "country_data is required"},
		{"invalid json", map[string]interface{}{"country_data": `{"US":`}, "invalid country_data"},
		{"non numeric", map[string]interface{}{"country_data": `{"US": "four"}`}, "value of US must be a number"},
		{"bad color", map[string]interface{}{"country_data": `{"US": 1}`, "low_color": "red"}, "failed to generate stylesheet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ts.mapCSSHandler(context.Background(), newRequest("generate_map_css", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestRenderMapHandler(t *testing.T) {
	ts := newTestToolset(t)
	out := filepath.Join(t.TempDir(), "maps", "map.html")

	res, err := ts.renderMapHandler(context.Background(), newRequest("render_world_map", map[string]interface{}{
		"country_data": `{"US": 4, "ZZ": 9}`,
		"output_path":  out,
		"title":        "Visitors",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	summary := resultText(t, res)
	assert.Contains(t, summary, "Countries with data: 2")
	assert.Contains(t, summary, "Value range: 4 - 9")
	assert.Contains(t, summary, "Not on the map: ZZ")

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Visitors</title>")
	assert.Contains(t, string(page), `<style id="vue-world-map-style">`)
	assert.Contains(t, string(page), ".vue-world-map #US { fill: #fde2e2; }")
}

func TestRenderMapHandlerRejectsViewBox(t *testing.T) {
	ts := newTestToolset(t)

	res, err := ts.renderMapHandler(context.Background(), newRequest("render_world_map", map[string]interface{}{
		"country_data": `{"US": 4}`,
		"output_path":  filepath.Join(t.TempDir(), "map.html"),
		"view_box":     "0 0 wide",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid view_box")
}

func TestLegendHandler(t *testing.T) {
	ts := newTestToolset(t)
	out := filepath.Join(t.TempDir(), "legend.svg")

	res, err := ts.legendHandler(context.Background(), newRequest("render_map_legend", map[string]interface{}{
		"country_data": `{"US": 4, "CA": 7}`,
		"output_path":  out,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), "Range: 4 - 7")

	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

type hoverResult struct {
	Legend struct {
		Code *string `json:"code"`
		Name *string `json:"name"`
	} `json:"legend"`
	Changed bool `json:"changed"`
}

func decodeHover(t *testing.T, res *mcp.CallToolResult) hoverResult {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out hoverResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestHoverAndLeave(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	res, err := ts.hoverHandler(ctx, newRequest("hover_country", map[string]interface{}{
		"code": "FR", "left": 120.0, "top": 40.0,
	}))
	require.NoError(t, err)
	got := decodeHover(t, res)
	require.NotNil(t, got.Legend.Code)
	assert.Equal(t, "FR", *got.Legend.Code)
	assert.Equal(t, "France", *got.Legend.Name)
	assert.True(t, got.Changed)

	res, err = ts.hoverHandler(ctx, newRequest("hover_country", map[string]interface{}{"code": "FR"}))
	require.NoError(t, err)
	assert.False(t, decodeHover(t, res).Changed)
	assert.Equal(t, 120.0, ts.Legend().State().Position.Left)

	res, err = ts.leaveHandler(ctx, newRequest("leave_country", nil))
	require.NoError(t, err)
	got = decodeHover(t, res)
	assert.Nil(t, got.Legend.Code)
	assert.True(t, got.Changed)

	res, err = ts.leaveHandler(ctx, newRequest("leave_country", nil))
	require.NoError(t, err)
	assert.False(t, decodeHover(t, res).Changed)
}

func TestHoverUnknownCountry(t *testing.T) {
	ts := newTestToolset(t)

	res, err := ts.hoverHandler(context.Background(), newRequest("hover_country", map[string]interface{}{"code": "ZZ"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.False(t, ts.Legend().State().Hovering())
}

func TestConcurrentHoverReportsEachChangeOnce(t *testing.T) {
	ts := newTestToolset(t)
	ctx := context.Background()

	var notified atomic.Int64
	ts.Legend().Subscribe(func(s legend.State) {
		if s.Hovering() {
			notified.Add(1)
		}
	})

	codes := []string{"FR", "DE", "FR", "US", "US", "GB"}
	var reported atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			res, err := ts.hoverHandler(ctx, newRequest("hover_country", map[string]interface{}{"code": code}))
			if err != nil || res.IsError {
				t.Errorf("hover %s failed: %v", code, err)
				return
			}
			var out hoverResult
			if err := json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &out); err != nil {
				t.Errorf("bad hover result: %v", err)
				return
			}
			if out.Changed {
				reported.Add(1)
			}
		}(codes[i%len(codes)])
	}
	wg.Wait()

	assert.Equal(t, notified.Load(), reported.Load())
}
