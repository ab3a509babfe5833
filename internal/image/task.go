package image

import (
	"fmt"

	"github.com/pixetta/pixetta/internal/pixelate"
	"github.com/twmb/murmur3"
)

// Task is an image render task
type Task struct {
	ImageID      string
	Params       pixelate.Params
	OutputFormat OutputFormat
}

// OutputFormat is the image format to output to
type OutputFormat int

const (
	// PNG represents the PNG format
	PNG OutputFormat = iota
	// JPEG represents the JPEG format
	JPEG
)

// NewTask creates a new render task with the default render parameters
func NewTask(imageID string, format OutputFormat) *Task {
	return &Task{
		ImageID:      imageID,
		Params:       pixelate.DefaultParams(),
		OutputFormat: format,
	}
}

// Pixelate sets the pixelation block size
func (t *Task) Pixelate(size int) *Task {
	t.Params.PixelSize = size
	return t
}

// Brightness sets the brightness multiplier
func (t *Task) Brightness(value float64) *Task {
	t.Params.Brightness = value
	return t
}

// Contrast sets the contrast multiplier
func (t *Task) Contrast(value float64) *Task {
	t.Params.Contrast = value
	return t
}

// Shadow sets the drop-shadow blur radius
func (t *Task) Shadow(radius int) *Task {
	t.Params.ShadowRadius = radius
	return t
}

// CacheKey returns a stable cache key for the rendered output of the task
func (t *Task) CacheKey() string {
	key := fmt.Sprintf("%s|%d|%g|%g|%d|%d", t.ImageID, t.Params.PixelSize, t.Params.Brightness, t.Params.Contrast, t.Params.ShadowRadius, t.OutputFormat)
	return fmt.Sprintf("render-%016x", murmur3.StringSum64(key))
}
