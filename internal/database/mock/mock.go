package mock

import (
	"context"
	"fmt"

	"github.com/pixetta/pixetta/internal/database"
)

// Provider implements a mock image metadata store
type Provider struct {
}

// Get returns the metadata for an image id
func (p *Provider) Get(ctx context.Context, id string) (i *database.Image, err error) {
	return nil, fmt.Errorf("get error")
}

// Add appends image metadata
func (p *Provider) Add(ctx context.Context, i database.Image) error {
	return fmt.Errorf("add error")
}

// ListAll returns a list of all the images
func (p *Provider) ListAll(ctx context.Context) ([]database.Image, error) {
	return nil, fmt.Errorf("list error")
}

// List returns a list of all the images with an offset/limit
func (p *Provider) List(ctx context.Context, offset, limit int) ([]database.Image, error) {
	return nil, fmt.Errorf("list error")
}

// Shutdown shuts down the database client
func (p *Provider) Shutdown() {}
