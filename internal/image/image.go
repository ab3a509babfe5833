package image

import "context"

// Processor is an interface for processing render tasks
type Processor interface {
	ProcessImage(ctx context.Context, task *Task) (processedImage []byte, err error)
}
