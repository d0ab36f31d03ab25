package module

import (
	"encoding/json"
	"fmt"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
)

type DisplayState int

const (
	DisplayNone DisplayState = iota
	DisplayInput
	DisplayPreview
	DisplayOutput
)

func (s DisplayState) String() string {
	switch s {
	case DisplayNone:
		return "none"
	case DisplayInput:
		return "input"
	case DisplayPreview:
		return "preview"
	case DisplayOutput:
		return "output"
	}
	return fmt.Sprintf("display(%d)", int(s))
}

func (s DisplayState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// InputImage selected source image, an empty Name means nothing is selected
type InputImage struct {
	Name string         `json:"name"`
	Mode string         `json:"mode"`
	Meta map[string]any `json:"meta,omitempty"`
}

func (i InputImage) Selected() bool {
	return i.Name != ""
}

func (i InputImage) Source() string {
	return MediaSource(i.Mode, i.Name)
}

func MediaSource(mode, name string) string {
	return fmt.Sprintf("%s/%s/%s", config.MEDIA, mode, name)
}

func PreviewSource(stamp string) string {
	return fmt.Sprintf("%s?t=%s", config.EXEC_PREVIEW, stamp)
}

// Display decides which image is shown: nothing, the input, the live preview or the final output.
// Only Preview moves on its own, driven by status snapshots.
type Display struct {
	state   DisplayState
	source  string
	assigns int
}

func NewDisplay() *Display {
	return &Display{state: DisplayNone}
}

func (d *Display) State() DisplayState {
	return d.state
}

func (d *Display) Source() string {
	return d.source
}

// Assignments number of times the shown source actually changed
func (d *Display) Assignments() int {
	return d.assigns
}

// setSource reassign the shown image only when it differs
func (d *Display) setSource(src string) bool {
	if src == d.source {
		return false
	}
	d.source = src
	d.assigns++
	return true
}

// ShowInput show the selected input image: after upload, on job start and after abort
func (d *Display) ShowInput(img InputImage) {
	d.state = DisplayInput
	d.setSource(img.Source())
}

// Clear nothing selected
func (d *Display) Clear() {
	d.state = DisplayNone
	d.setSource("")
}

// ApplyStatus feed one status snapshot, steps run in a fixed order
func (d *Display) ApplyStatus(snapshot *models.StatusSnapshot) {
	// first processing tick switches to the live preview
	if snapshot.Status == config.STATUS_PROC && d.state == DisplayInput {
		d.state = DisplayPreview
	}

	stamp := snapshot.PreviewStamp()
	if stamp != "" && d.state == DisplayPreview {
		d.setSource(PreviewSource(stamp))
	}

	if len(snapshot.Output) > 0 && d.state == DisplayPreview {
		img := snapshot.Output[0]
		if img.Mode == config.MODE_PREVIEW && stamp != "" {
			// output only exists as the preview so far
			d.setSource(PreviewSource(stamp))
			return
		}
		d.setSource(MediaSource(img.Mode, img.Name))
		d.state = DisplayOutput
	}
}
