package module

import (
	"encoding/json"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/fields"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
)

var emptyWorkflow = json.RawMessage(`{}`)

// FieldReader current field values
type FieldReader interface {
	Int(key fields.Key) int
	Number(key fields.Key) float64
	Flag(key fields.Key) bool
	String(key fields.Key) string
}

// BuildJobConfig snapshot the fields into a job submission and check it can be sent.
// The config is returned even when the check fails.
func BuildJobConfig(f FieldReader, input InputImage, workflow json.RawMessage) (*models.JobConfig, error) {
	if len(workflow) == 0 {
		workflow = emptyWorkflow
	}
	size := f.Int(fields.TileSize)
	conf := &models.JobConfig{
		Slicer: models.SlicerConfig{
			Name:    f.String(fields.SlicerName),
			Size:    size,
			Overlap: f.Int(fields.TileOverlap),
			Uniform: f.Flag(fields.TileUniform),
		},
		Mask: models.MaskConfig{
			Size:    size,
			Feather: f.Int(fields.MaskFeather),
			Padding: f.Int(fields.MaskPadding),
		},
		Job: models.JobSettings{
			Type:          config.JOB_TYPE,
			DryRun:        f.Flag(fields.DryRun),
			TileSource:    f.String(fields.TileSource),
			TileNoise:     f.String(fields.TileNoise),
			ImageName:     input.Name,
			ImageMode:     input.Mode,
			ImageWidth:    f.Int(fields.ImageWidth),
			ImageHeight:   f.Int(fields.ImageHeight),
			UpscaleFactor: f.Number(fields.UpscaleFactor),
		},
		Workflow: models.WorkflowConfig{
			Workflow:       workflow,
			PositivePrompt: f.String(fields.PositivePrompt),
			NegativePrompt: f.String(fields.NegativePrompt),
		},
	}
	return conf, CheckJobConfig(conf)
}

// CheckJobConfig pre-submission checks, first failure wins
func CheckJobConfig(conf *models.JobConfig) error {
	if conf.Job.ImageName == "" {
		return ErrNoInputImage
	}
	if conf.Job.TileNoise != config.NOISE_LOCAL {
		return ErrTileNoise
	}
	return nil
}
