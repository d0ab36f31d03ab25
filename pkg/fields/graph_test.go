package fields

import (
	"testing"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, slicer string) *Graph {
	d := config.DefaultConfig().Tiling
	d.SlicerName = slicer
	d.AutoPadding = false
	g := NewGraph(d)
	require.Equal(t, slicer, g.Slicer())
	return g
}

func TestCheckOrder(t *testing.T) {
	assert.NoError(t, checkOrder())

	edges[UpscaleFactor] = []Key{SlicerName}
	defer delete(edges, UpscaleFactor)
	assert.Error(t, checkOrder())
}

func TestNyanTileOverlapFollowsTileSize(t *testing.T) {
	for _, slicer := range []string{config.SLICER_SIMPLE, config.SLICER_NYANTILE, config.SLICER_USDUS} {
		g := newTestGraph(t, slicer)
		before := g.Number(TileOverlap)
		for _, size := range []int{512, 768, 333, 1024} {
			require.NoError(t, g.Set(TileSize, size))
			if slicer == config.SLICER_NYANTILE {
				assert.Equal(t, round(float64(size)/2), g.Number(TileOverlap), slicer)
			} else {
				assert.Equal(t, before, g.Number(TileOverlap), slicer)
			}
		}
	}
}

func TestSlicerToggles(t *testing.T) {
	g := newTestGraph(t, config.SLICER_SIMPLE)
	assert.True(t, g.Enabled(TileOverlap))
	assert.False(t, g.Enabled(AutoFeather))
	assert.Equal(t, config.SOURCE_RAW, g.String(TileSource))

	require.NoError(t, g.Set(SlicerName, config.SLICER_NYANTILE))
	assert.False(t, g.Enabled(TileOverlap))
	assert.True(t, g.Enabled(AutoFeather))
	f, _ := g.Get(AutoFeather)
	assert.True(t, f.Visible)
	assert.Equal(t, config.SOURCE_OUT, g.String(TileSource))
	assert.Equal(t, round(float64(g.Int(TileSize))/2), g.Number(TileOverlap))

	err := g.Set(TileOverlap, 10)
	assert.ErrorIs(t, err, ErrFieldDisabled)

	require.NoError(t, g.Set(AutoFeather, true))
	require.NoError(t, g.Set(SlicerName, config.SLICER_USDUS))
	assert.False(t, g.Flag(AutoFeather))
	assert.True(t, g.Enabled(MaskFeather))
	f, _ = g.Get(AutoFeather)
	assert.False(t, f.Visible)
}

func TestAutoPadding(t *testing.T) {
	g := newTestGraph(t, config.SLICER_SIMPLE)
	require.NoError(t, g.Set(TileOverlap, 64))
	require.NoError(t, g.Set(MaskFeather, 4))
	require.NoError(t, g.Set(AutoPadding, true))
	assert.Equal(t, 28.0, g.Number(MaskPadding))
	assert.False(t, g.Enabled(MaskPadding))

	// padding tracks feather edits while enabled
	require.NoError(t, g.Set(MaskFeather, 8))
	assert.Equal(t, 24.0, g.Number(MaskPadding))

	require.NoError(t, g.Set(AutoPadding, false))
	assert.True(t, g.Enabled(MaskPadding))
	assert.Equal(t, 24.0, g.Number(MaskPadding))

	g = newTestGraph(t, config.SLICER_USDUS)
	require.NoError(t, g.Set(TileOverlap, 64))
	require.NoError(t, g.Set(MaskFeather, 4))
	require.NoError(t, g.Set(AutoPadding, true))
	assert.Equal(t, 60.0, g.Number(MaskPadding))

	g = newTestGraph(t, config.SLICER_NYANTILE)
	require.NoError(t, g.Set(TileSize, 512))
	require.NoError(t, g.Set(AutoPadding, true))
	assert.Equal(t, 28.0, g.Number(MaskPadding))
}

func TestAutoFeather(t *testing.T) {
	g := newTestGraph(t, config.SLICER_NYANTILE)
	require.NoError(t, g.Set(TileSize, 512))
	require.NoError(t, g.Set(AutoFeather, true))
	assert.Equal(t, 56.0, g.Number(MaskFeather))
	assert.False(t, g.Enabled(MaskFeather))
	assert.ErrorIs(t, g.Set(MaskFeather, 3), ErrFieldDisabled)

	// tile size change flows through feather into padding
	require.NoError(t, g.Set(AutoPadding, true))
	require.NoError(t, g.Set(TileSize, 1024))
	assert.Equal(t, 112.0, g.Number(MaskFeather))
	assert.Equal(t, 56.0, g.Number(MaskPadding))
	assert.Equal(t, 512.0, g.Number(TileOverlap))

	require.NoError(t, g.Set(AutoFeather, false))
	assert.True(t, g.Enabled(MaskFeather))
	assert.Equal(t, 112.0, g.Number(MaskFeather))
}

func TestUpscaleLabel(t *testing.T) {
	g := newTestGraph(t, config.SLICER_SIMPLE)
	require.NoError(t, g.Set(TileSize, 768))
	require.NoError(t, g.Set(UpscaleFactor, 2))
	f, _ := g.Get(UpscaleFactor)
	assert.Equal(t, "[384=>768]", f.Label)

	require.NoError(t, g.Set(UpscaleFactor, 1.5))
	f, _ = g.Get(UpscaleFactor)
	assert.Equal(t, "[512=>768]", f.Label)

	// label follows tile size without touching the factor
	require.NoError(t, g.Set(TileSize, 1536))
	f, _ = g.Get(UpscaleFactor)
	assert.Equal(t, "[1024=>1536]", f.Label)
	assert.Equal(t, 1.5, g.Number(UpscaleFactor))

	require.NoError(t, g.Set(UpscaleFactor, 0))
	f, _ = g.Get(UpscaleFactor)
	assert.Empty(t, f.Label)
}

func TestImageSizeTriangle(t *testing.T) {
	g := newTestGraph(t, config.SLICER_SIMPLE)
	g.SetNatural(1000, 500)
	assert.Equal(t, 1000.0, g.Number(ImageWidth))
	assert.Equal(t, 500.0, g.Number(ImageHeight))
	assert.Equal(t, 1.0, g.Number(ImageScale))

	require.NoError(t, g.Set(ImageScale, 2.0))
	assert.Equal(t, 2000.0, g.Number(ImageWidth))
	assert.Equal(t, 1000.0, g.Number(ImageHeight))

	require.NoError(t, g.Set(ImageWidth, 500))
	assert.Equal(t, 250.0, g.Number(ImageHeight))
	assert.Equal(t, 0.5, g.Number(ImageScale))

	require.NoError(t, g.Set(ImageHeight, 750))
	assert.Equal(t, 1500.0, g.Number(ImageWidth))
	assert.Equal(t, 1.5, g.Number(ImageScale))

	g.SetNatural(0, 0)
	for _, k := range []Key{ImageWidth, ImageHeight, ImageScale} {
		require.NoError(t, g.Set(k, 1234))
		assert.Equal(t, 0.0, g.Number(ImageWidth))
		assert.Equal(t, 0.0, g.Number(ImageHeight))
		assert.Equal(t, 0.0, g.Number(ImageScale))
	}
}

func TestSetErrors(t *testing.T) {
	g := newTestGraph(t, config.SLICER_SIMPLE)
	assert.ErrorIs(t, g.Set("bogus", 1), ErrUnknownField)
	assert.ErrorIs(t, g.Set(TileSize, "512"), ErrFieldType)
	assert.ErrorIs(t, g.Set(DryRun, 1), ErrFieldType)
	assert.ErrorIs(t, g.Set(SlicerName, "Chess"), ErrFieldValue)
	assert.ErrorIs(t, g.Set(TileNoise, "remote"), ErrFieldValue)
	require.NoError(t, g.Set(PositivePrompt, "a cat"))
	assert.Equal(t, "a cat", g.String(PositivePrompt))
}

func TestFieldsLayout(t *testing.T) {
	g := newTestGraph(t, config.SLICER_SIMPLE)
	all := g.Fields()
	assert.Len(t, all, len(layout))
	assert.Equal(t, SlicerName, all[0].Key)
	// copies, not references
	all[1].Value = 1.0
	assert.NotEqual(t, 1.0, g.Number(all[1].Key))
}
