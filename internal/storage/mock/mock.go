package mock

import (
	"context"
)

// Provider implements a mock source image storage
type Provider struct {
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) ([]byte, error) {
	return []byte("foo"), nil
}

// Put stores the image data for an image id
func (p *Provider) Put(ctx context.Context, id string, data []byte) error {
	return nil
}
