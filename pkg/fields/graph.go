package fields

import (
	"fmt"
	"math"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
)

// rule recompute the effects owned by key
type rule func(g *Graph, key Key)

// edges cause -> fields whose rule has to be re-evaluated after the cause changed
var edges = map[Key][]Key{
	SlicerName:  {TileSize, AutoPadding, AutoFeather},
	TileSize:    {TileOverlap, UpscaleFactor},
	TileOverlap: {AutoPadding, AutoFeather},
	AutoFeather: {MaskFeather},
	MaskFeather: {AutoPadding},
}

// order evaluation order of the tiling rules, every edge points forward
var order = []Key{
	SlicerName,
	TileSize,
	TileOverlap,
	AutoFeather,
	MaskFeather,
	AutoPadding,
	UpscaleFactor,
}

var rules = map[Key]rule{
	SlicerName:    slicerRule,
	TileSize:      tileSizeRule,
	AutoFeather:   autoFeatherRule,
	AutoPadding:   autoPaddingRule,
	UpscaleFactor: upscaleLabelRule,
	ImageWidth:    imageSizeRule,
	ImageHeight:   imageSizeRule,
	ImageScale:    imageSizeRule,
}

// display order of all fields
var layout = []Key{
	SlicerName, TileSize, TileOverlap, TileUniform,
	MaskFeather, AutoFeather, MaskPadding, AutoPadding,
	UpscaleFactor, TileSource, TileNoise,
	ImageWidth, ImageHeight, ImageScale,
	PositivePrompt, NegativePrompt, DryRun,
}

func init() {
	if err := checkOrder(); err != nil {
		panic(err)
	}
}

// checkOrder make sure the dependency table is acyclic: each edge has to go forward in order
func checkOrder() error {
	pos := make(map[Key]int, len(order))
	for i, k := range order {
		pos[k] = i
	}
	for cause, effects := range edges {
		from, ok := pos[cause]
		if !ok {
			return fmt.Errorf("field graph: cause %s not in order", cause)
		}
		for _, effect := range effects {
			to, ok := pos[effect]
			if !ok || to <= from {
				return fmt.Errorf("field graph: edge %s -> %s breaks order", cause, effect)
			}
		}
	}
	return nil
}

// Graph configuration fields kept consistent with each other.
// Not safe for concurrent use.
type Graph struct {
	fields        map[Key]*Field
	naturalWidth  int
	naturalHeight int
}

func NewGraph(d config.TilingDefaults) *Graph {
	g := &Graph{fields: make(map[Key]*Field, len(layout))}
	g.add(SlicerName, Choice, d.SlicerName,
		config.SLICER_SIMPLE, config.SLICER_NYANTILE, config.SLICER_USDUS)
	g.add(TileSize, Number, float64(d.TileSize))
	g.add(TileOverlap, Number, float64(d.TileOverlap))
	g.add(TileUniform, Flag, d.Uniform)
	g.add(MaskFeather, Number, float64(d.MaskFeather))
	g.add(MaskPadding, Number, float64(d.MaskPadding))
	g.add(AutoFeather, Flag, d.AutoFeather)
	g.add(AutoPadding, Flag, d.AutoPadding)
	g.add(UpscaleFactor, Number, d.UpscaleFactor)
	g.add(TileSource, Choice, config.SOURCE_RAW, config.SOURCE_RAW, config.SOURCE_OUT)
	g.add(TileNoise, Choice, d.TileNoise, config.NOISE_LOCAL, config.NOISE_GLOBAL)
	g.add(ImageWidth, Number, 0.0)
	g.add(ImageHeight, Number, 0.0)
	g.add(ImageScale, Number, 0.0)
	g.add(PositivePrompt, Text, "")
	g.add(NegativePrompt, Text, "")
	g.add(DryRun, Flag, false)

	// same as a slicer selection on load
	g.propagate(SlicerName)
	return g
}

func (g *Graph) add(key Key, kind Kind, value any, options ...string) {
	g.fields[key] = &Field{
		Key:     key,
		Kind:    kind,
		Value:   value,
		Enabled: true,
		Visible: true,
		Options: options,
	}
}

// Set assign value to an enabled field and propagate the change to its dependents
func (g *Graph) Set(key Key, value any) error {
	f, ok := g.fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if !f.Enabled {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, key)
	}
	v, err := f.coerce(value)
	if err != nil {
		return err
	}
	f.Value = v
	g.propagate(key)
	return nil
}

// propagate evaluate the rule of cause and of every transitive dependent once
func (g *Graph) propagate(cause Key) {
	if !inOrder(cause) {
		if r := rules[cause]; r != nil {
			r(g, cause)
		}
		return
	}
	affected := map[Key]bool{cause: true}
	for _, k := range order {
		if !affected[k] {
			continue
		}
		for _, effect := range edges[k] {
			affected[effect] = true
		}
	}
	for _, k := range order {
		if !affected[k] {
			continue
		}
		if r := rules[k]; r != nil {
			r(g, k)
		}
	}
}

func inOrder(key Key) bool {
	for _, k := range order {
		if k == key {
			return true
		}
	}
	return false
}

// SetNatural natural size of the loaded image, zero when no image is shown
func (g *Graph) SetNatural(width, height int) {
	g.naturalWidth = width
	g.naturalHeight = height
	if width == 0 || height == 0 {
		g.setNumber(ImageWidth, 0)
		g.setNumber(ImageHeight, 0)
		g.setNumber(ImageScale, 0)
		return
	}
	g.setNumber(ImageWidth, float64(width))
	g.setNumber(ImageHeight, float64(height))
	g.setNumber(ImageScale, 1.0)
}

func (g *Graph) Natural() (int, int) {
	return g.naturalWidth, g.naturalHeight
}

func (g *Graph) Get(key Key) (Field, bool) {
	f, ok := g.fields[key]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// Fields copy of all fields in display order
func (g *Graph) Fields() []Field {
	out := make([]Field, 0, len(layout))
	for _, k := range layout {
		out = append(out, *g.fields[k])
	}
	return out
}

func (g *Graph) Number(key Key) float64 {
	v, _ := g.fields[key].Value.(float64)
	return v
}

// Int integer part of a number field
func (g *Graph) Int(key Key) int {
	return int(math.Trunc(g.Number(key)))
}

func (g *Graph) Flag(key Key) bool {
	v, _ := g.fields[key].Value.(bool)
	return v
}

func (g *Graph) String(key Key) string {
	v, _ := g.fields[key].Value.(string)
	return v
}

func (g *Graph) Enabled(key Key) bool {
	return g.fields[key].Enabled
}

func (g *Graph) Slicer() string {
	return g.String(SlicerName)
}

func (g *Graph) setNumber(key Key, v float64) {
	g.fields[key].Value = v
}

func (g *Graph) setEnabled(key Key, enabled bool) {
	g.fields[key].Enabled = enabled
}

// round half up, matching the UI's rounding of derived values
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
