package fields

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Key string

const (
	SlicerName     Key = "slicer_name"
	TileSize       Key = "tile_size"
	TileOverlap    Key = "tile_overlap"
	TileUniform    Key = "tile_uniform"
	MaskFeather    Key = "mask_feather"
	MaskPadding    Key = "mask_padding"
	AutoFeather    Key = "auto_feather"
	AutoPadding    Key = "auto_padding"
	UpscaleFactor  Key = "upscale_factor"
	ImageWidth     Key = "image_width"
	ImageHeight    Key = "image_height"
	ImageScale     Key = "image_scale"
	PositivePrompt Key = "positive_prompt"
	NegativePrompt Key = "negative_prompt"
	TileSource     Key = "tile_source"
	TileNoise      Key = "tile_noise"
	DryRun         Key = "dry_run"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrFieldDisabled = errors.New("field is disabled")
	ErrFieldType     = errors.New("wrong value type for field")
	ErrFieldValue    = errors.New("value not allowed for field")
)

type Kind int

const (
	Number Kind = iota
	Flag
	Choice
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Flag:
		return "flag"
	case Choice:
		return "choice"
	case Text:
		return "text"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Field one configuration input and the state the UI shows for it.
// Value holds float64 for Number, bool for Flag and string for Choice/Text.
type Field struct {
	Key     Key      `json:"key"`
	Kind    Kind     `json:"kind"`
	Value   any      `json:"value"`
	Enabled bool     `json:"enabled"`
	Visible bool     `json:"visible"`
	Label   string   `json:"label,omitempty"`
	Options []string `json:"options,omitempty"`
}

// coerce convert an incoming value (usually decoded from JSON) to the field's kind
func (f *Field) coerce(value any) (any, error) {
	switch f.Kind {
	case Number:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case json.Number:
			n, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrFieldType, f.Key)
			}
			return n, nil
		}
	case Flag:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case Choice:
		if v, ok := value.(string); ok {
			for _, opt := range f.Options {
				if opt == v {
					return v, nil
				}
			}
			return nil, fmt.Errorf("%w: %s=%q", ErrFieldValue, f.Key, v)
		}
	case Text:
		if v, ok := value.(string); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s expects %s", ErrFieldType, f.Key, f.Kind)
}
