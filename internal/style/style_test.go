package style

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/junkd0g/worldmap/internal/mapcss"
)

func testProps() Props {
	return Props{
		CountryData: mapcss.CountryData{
			{Code: "US", Value: 100},
			{Code: "CA", Value: 120},
			{Code: "GB", Value: 200},
		},
		Colors: mapcss.DefaultColorConfig(),
	}
}

func mountedInjector(t *testing.T, store *Store) (*Injector, *HTMLDocument) {
	t.Helper()

	doc, err := NewHTMLDocument("")
	require.NoError(t, err)

	in := NewInjector(store, zaptest.NewLogger(t))
	require.NoError(t, in.Mount(doc))
	return in, doc
}

func TestInjectorMountRenders(t *testing.T) {
	in, doc := mountedInjector(t, NewStore(testProps()))

	node := doc.ElementByID(NodeID)
	require.NotNil(t, node)
	assert.Equal(t, "style", node.Data)

	css := in.CSS()
	assert.Contains(t, css, ".vue-world-map")
	assert.True(t, strings.HasPrefix(css, ".vue-world-map #US { fill: #fde2e2; }"), css)
	assert.Contains(t, doc.String(), css)
}

func TestRenderMapCSSIsIdempotent(t *testing.T) {
	in, doc := mountedInjector(t, NewStore(testProps()))

	first := doc.String()
	require.NoError(t, in.RenderMapCSS())
	require.NoError(t, in.RenderMapCSS())

	assert.Equal(t, first, doc.String())
}

func TestInjectorFollowsStore(t *testing.T) {
	store := NewStore(testProps())
	in, doc := mountedInjector(t, store)
	before := in.CSS()

	store.SetCountryData(mapcss.CountryData{{Code: "FR", Value: 1}, {Code: "DE", Value: 2}})
	after := in.CSS()
	assert.NotEqual(t, before, after)
	assert.Contains(t, after, "#FR { fill: #fde2e2; }")
	assert.NotContains(t, after, "#US")

	colors := mapcss.DefaultColorConfig()
	colors.DefaultCountryFillColor = "#123456"
	store.SetColors(colors)
	assert.Contains(t, in.CSS(), "fill:#123456")

	// The node holds exactly one copy of the stylesheet.
	assert.Equal(t, 1, strings.Count(doc.String(), "<style"))
	assert.Equal(t, 1, strings.Count(doc.String(), ".vue-world-map .land"))
}

func TestInjectorRendersLatestPropsUnderConcurrentUpdates(t *testing.T) {
	store := NewStore(testProps())
	in, _ := mountedInjector(t, store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.SetCountryData(mapcss.CountryData{
				{Code: "US", Value: float64(i)},
				{Code: "GB", Value: 100},
			})
		}(i)
	}
	wg.Wait()

	props := store.Props()
	want, err := mapcss.Stylesheet(props.CountryData, props.Colors)
	require.NoError(t, err)
	assert.Equal(t, want, in.CSS())
}

func TestInjectorKeepsStylesheetOnBadColors(t *testing.T) {
	store := NewStore(testProps())
	in, _ := mountedInjector(t, store)
	before := in.CSS()

	colors := mapcss.DefaultColorConfig()
	colors.HighColor = "not-a-color"
	store.SetColors(colors)

	assert.Equal(t, before, in.CSS())
	assert.Error(t, in.Err())
}

func TestInjectorUnmount(t *testing.T) {
	store := NewStore(testProps())
	in, doc := mountedInjector(t, store)

	require.NoError(t, in.Unmount())
	assert.Nil(t, doc.ElementByID(NodeID))
	assert.ErrorIs(t, in.RenderMapCSS(), ErrNotMounted)
	assert.ErrorIs(t, in.Unmount(), ErrNotMounted)

	// Store changes no longer reach the injector.
	store.SetCountryData(nil)
	assert.Empty(t, in.CSS())

	// It can be mounted again.
	require.NoError(t, in.Mount(doc))
	assert.NotNil(t, doc.ElementByID(NodeID))
}

func TestInjectorMountTwice(t *testing.T) {
	in, doc := mountedInjector(t, NewStore(testProps()))
	assert.ErrorIs(t, in.Mount(doc), ErrAlreadyMounted)
}

func TestRenderBeforeMount(t *testing.T) {
	in := NewInjector(NewStore(testProps()), nil)
	assert.ErrorIs(t, in.RenderMapCSS(), ErrNotMounted)
}

func TestStyleNodeReplacesContent(t *testing.T) {
	doc, err := NewHTMLDocument("<html><head><title>x</title></head><body></body></html>")
	require.NoError(t, err)

	node, err := doc.CreateStyleNode("s")
	require.NoError(t, err)

	node.SetContent("a { }")
	node.SetContent("b { }")
	assert.Equal(t, "b { }", node.Content())
	assert.Contains(t, doc.String(), `<style id="s">b { }</style>`)

	_, err = doc.CreateStyleNode("s")
	assert.Error(t, err)

	require.NoError(t, node.Remove())
	assert.ErrorIs(t, node.Remove(), ErrNodeRemoved)
}

func TestStoreNotifiesInOrder(t *testing.T) {
	store := NewStore(Props{})
	var order []string
	store.Subscribe(func(Props) { order = append(order, "first") })
	cancel := store.Subscribe(func(Props) { order = append(order, "second") })

	store.SetCountryData(mapcss.CountryData{{Code: "US", Value: 1}})
	cancel()
	store.SetColors(mapcss.DefaultColorConfig())

	assert.Equal(t, []string{"first", "second", "first"}, order)
}

func TestStorePropsAreCopies(t *testing.T) {
	data := mapcss.CountryData{{Code: "US", Value: 1}}
	store := NewStore(Props{CountryData: data})

	data[0].Value = 99
	got := store.Props()
	assert.Equal(t, float64(1), got.CountryData[0].Value)

	got.CountryData[0].Value = 42
	assert.Equal(t, float64(1), store.Props().CountryData[0].Value)
}
