package storage

import (
	"context"
	"errors"
)

// Provider is an interface for retrieving and storing source images
type Provider interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Put(ctx context.Context, id string, data []byte) error
}

// Errors
var (
	ErrNotFound = errors.New("Image does not exist")
)
