package file

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/pixetta/pixetta/internal/database"
)

// Provider implements an image metadata store backed by a JSON manifest file
type Provider struct {
	path   string
	images []database.Image
	mu     sync.RWMutex
}

// New returns a new Provider instance
func New(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var images []database.Image
	err = json.Unmarshal(data, &images)
	if err != nil {
		return nil, err
	}

	return &Provider{
		path:   path,
		images: images,
	}, nil
}

// Get returns the metadata for an image id
func (p *Provider) Get(ctx context.Context, id string) (i *database.Image, err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, image := range p.images {
		if image.ID == id {
			image := image
			return &image, nil
		}
	}

	return nil, database.ErrNotFound
}

// Add appends image metadata and persists the manifest
func (p *Provider) Add(ctx context.Context, i database.Image) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.images = append(p.images, i)

	data, err := json.MarshalIndent(p.images, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(p.path, data, 0644)
}

// ListAll returns a list of all the images
func (p *Provider) ListAll(ctx context.Context) ([]database.Image, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	images := make([]database.Image, len(p.images))
	copy(images, p.images)
	return images, nil
}

// List returns a list of all the images with an offset/limit
func (p *Provider) List(ctx context.Context, offset, limit int) ([]database.Image, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	images := len(p.images)
	if offset > images {
		offset = images
	}

	limit = offset + limit
	if limit > images {
		limit = images
	}

	return p.images[offset:limit], nil
}

// Shutdown shuts down the database client
func (p *Provider) Shutdown() {}
