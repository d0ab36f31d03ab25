package module

import (
	"errors"

	"github.com/devsapp/tiled-upscale-console/pkg/fields"
)

// validation errors, the text is shown to the operator as is
var (
	ErrNoInputImage    = errors.New("No input image!")
	ErrTileNoise       = errors.New("Tile noise source must be 'Local' (Feature TBA)")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrImageSelected   = errors.New("An image is already selected, clear it first")
	ErrUploadRejected  = errors.New("upload rejected by backend")
	ErrUnknownWorkflow = errors.New("unknown workflow")
	ErrPromptSource    = errors.New("prompt source must be 'workflow' or 'input'")
	ErrNoImage         = errors.New("no image shown")
)

// control errors, the matching button is disabled
var (
	ErrJobRunning  = errors.New("A job is already running")
	ErrNoActiveJob = errors.New("No active job!")
)

// IsValidation error caused by operator input rather than the backend
func IsValidation(err error) bool {
	for _, target := range []error{ErrNoInputImage, ErrTileNoise, ErrInvalidFileType,
		ErrImageSelected, ErrUnknownWorkflow, ErrPromptSource, ErrNoImage,
		fields.ErrUnknownField, fields.ErrFieldDisabled, fields.ErrFieldType, fields.ErrFieldValue} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
