package studio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/logger"
)

// Errors
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Registry tracks active sessions by ID
type Registry struct {
	ctx       context.Context
	log       *logger.Logger
	processor image.Processor

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry(ctx context.Context, log *logger.Logger, processor image.Processor) *Registry {
	return &Registry{
		ctx:       ctx,
		log:       log,
		processor: processor,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new session for the given source image and returns its ID
func (r *Registry) Create(imageID string, format image.OutputFormat) (string, *Session) {
	id := newSessionID()
	session := NewSession(r.ctx, r.log, r.processor, imageID, format)

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	return id, session
}

// Get returns the session with the given ID
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Close removes the session with the given ID and cancels its work
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Close()
	return nil
}

func newSessionID() string {
	buf := make([]byte, 12)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
