package models

import (
	"encoding/json"
	"strconv"
)

// JobConfig body of POST /api/exec/start
type JobConfig struct {
	Slicer   SlicerConfig   `json:"slicer"`
	Mask     MaskConfig     `json:"mask"`
	Job      JobSettings    `json:"job"`
	Workflow WorkflowConfig `json:"workflow"`
}

type SlicerConfig struct {
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Overlap int    `json:"overlap"`
	Uniform bool   `json:"uniform"`
}

// MaskConfig Size always equals the slicer size
type MaskConfig struct {
	Size    int `json:"size"`
	Feather int `json:"feather"`
	Padding int `json:"padding"`
}

type JobSettings struct {
	Type          string  `json:"type"`
	DryRun        bool    `json:"dry_run"`
	TileSource    string  `json:"tile_source"`
	TileNoise     string  `json:"tile_noise"`
	ImageName     string  `json:"image_name"`
	ImageMode     string  `json:"image_mode"`
	ImageWidth    int     `json:"image_width"`
	ImageHeight   int     `json:"image_height"`
	UpscaleFactor float64 `json:"upscale_factor"`
}

type WorkflowConfig struct {
	Workflow       json.RawMessage `json:"workflow"`
	PositivePrompt string          `json:"positive_prompt,omitempty"`
	NegativePrompt string          `json:"negative_prompt,omitempty"`
}

// StatusSnapshot GET /api/exec/status
type StatusSnapshot struct {
	Status         string        `json:"status"`
	Progress       *Progress     `json:"progress,omitempty"`
	PreviewChanged *float64      `json:"preview_changed,omitempty"`
	Output         []OutputImage `json:"output,omitempty"`
}

type Progress struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Perc    float64 `json:"perc"`
	Label   string  `json:"label"`
}

type OutputImage struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

// PreviewStamp preview change timestamp as sent back in the preview url, empty when unset
func (s *StatusSnapshot) PreviewStamp() string {
	if s.PreviewChanged == nil || *s.PreviewChanged == 0 {
		return ""
	}
	return strconv.FormatFloat(*s.PreviewChanged, 'f', -1, 64)
}
