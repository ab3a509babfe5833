package database

import (
	"context"
	"errors"
)

// Image contains metadata about an uploaded source image
type Image struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Provider is an interface for listing and retrieving image metadata
type Provider interface {
	Get(ctx context.Context, id string) (i *Image, err error)
	Add(ctx context.Context, i Image) error
	ListAll(ctx context.Context) ([]Image, error)
	List(ctx context.Context, offset, limit int) ([]Image, error)

	Shutdown()
}

// Errors
var (
	ErrNotFound = errors.New("Image does not exist")
)
