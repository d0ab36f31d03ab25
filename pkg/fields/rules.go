package fields

import (
	"fmt"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
)

const (
	nyanFeatherRatio = 0.109375
	nyanPaddingRatio = 0.0546875
)

// slicerRule overlap and auto feather availability depend on the slicer kind
func slicerRule(g *Graph, _ Key) {
	autoFeather := g.fields[AutoFeather]
	if g.Slicer() == config.SLICER_NYANTILE {
		g.setEnabled(TileOverlap, false)
		autoFeather.Enabled = true
		autoFeather.Visible = true
		g.fields[TileSource].Value = config.SOURCE_OUT
		return
	}
	g.setEnabled(TileOverlap, true)
	autoFeather.Value = false
	autoFeather.Enabled = false
	autoFeather.Visible = false
	g.fields[TileSource].Value = config.SOURCE_RAW
}

// tileSizeRule NyanTile tiles always overlap by half
func tileSizeRule(g *Graph, _ Key) {
	if g.Slicer() == config.SLICER_NYANTILE {
		g.setNumber(TileOverlap, round(float64(g.Int(TileSize))/2.0))
	}
}

// autoFeatherRule only NyanTile has a feather formula, other kinds keep the current value
func autoFeatherRule(g *Graph, _ Key) {
	if !g.Flag(AutoFeather) {
		g.setEnabled(MaskFeather, true)
		return
	}
	g.setEnabled(MaskFeather, false)
	if g.Slicer() == config.SLICER_NYANTILE {
		g.setNumber(MaskFeather, round(float64(g.Int(TileSize))*nyanFeatherRatio))
	}
}

func autoPaddingRule(g *Graph, _ Key) {
	if !g.Flag(AutoPadding) {
		g.setEnabled(MaskPadding, true)
		return
	}
	g.setEnabled(MaskPadding, false)
	overlap := float64(g.Int(TileOverlap))
	feather := float64(g.Int(MaskFeather))
	switch g.Slicer() {
	case config.SLICER_NYANTILE:
		g.setNumber(MaskPadding, round(float64(g.Int(TileSize))*nyanPaddingRatio))
	case config.SLICER_SIMPLE:
		g.setNumber(MaskPadding, round(overlap/2.0-feather))
	case config.SLICER_USDUS:
		g.setNumber(MaskPadding, round(overlap-feather))
	}
}

// upscaleLabelRule display only, shows which source size maps onto a tile
func upscaleLabelRule(g *Graph, _ Key) {
	factor := g.fields[UpscaleFactor]
	scale := g.Number(UpscaleFactor)
	if scale <= 0 {
		factor.Label = ""
		return
	}
	size := g.Int(TileSize)
	factor.Label = fmt.Sprintf("[%d=>%d]", int(round(float64(size)/scale)), size)
}

// imageSizeRule width, height and scale follow each other through the natural image size
func imageSizeRule(g *Graph, key Key) {
	natW, natH := float64(g.naturalWidth), float64(g.naturalHeight)
	if natW == 0 || natH == 0 {
		g.setNumber(ImageWidth, 0)
		g.setNumber(ImageHeight, 0)
		g.setNumber(ImageScale, 0)
		return
	}
	switch key {
	case ImageWidth:
		width := float64(g.Int(ImageWidth))
		g.setNumber(ImageHeight, round(width/natW*natH))
		g.setNumber(ImageScale, width/natW)
	case ImageHeight:
		height := float64(g.Int(ImageHeight))
		g.setNumber(ImageWidth, round(height/natH*natW))
		g.setNumber(ImageScale, height/natH)
	case ImageScale:
		scale := g.Number(ImageScale)
		g.setNumber(ImageWidth, round(natW*scale))
		g.setNumber(ImageHeight, round(natH*scale))
	}
}
