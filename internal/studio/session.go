package studio

import (
	"context"
	"sync"

	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/pixelate"
)

// Session coordinates interactive renders for a single source image.
// Parameter updates coalesce: at most one render is in flight, and a new
// update overwrites the pending parameter set instead of queueing behind it.
// Completions carry a sequence number so a stale result can never replace
// a newer one.
type Session struct {
	imageID   string
	format    image.OutputFormat
	processor image.Processor
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	pending    *pixelate.Params
	pendingSeq uint64
	seq        uint64
	displayed  uint64
	result     []byte
	err        error
	inflight   bool
	idle       chan struct{}
}

// NewSession creates a session for the given source image
func NewSession(ctx context.Context, log *logger.Logger, processor image.Processor, imageID string, format image.OutputFormat) *Session {
	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		imageID:   imageID,
		format:    format,
		processor: processor,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Update records a new parameter set and schedules a render for it.
// If a render is already in flight the parameters replace any pending set,
// so intermediate values are skipped entirely.
func (s *Session) Update(params pixelate.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.pending = &params
	s.pendingSeq = s.seq

	if !s.inflight {
		s.inflight = true
		go s.run()
	}
}

func (s *Session) run() {
	for {
		s.mu.Lock()
		if s.pending == nil {
			s.inflight = false
			if s.idle != nil {
				close(s.idle)
				s.idle = nil
			}
			s.mu.Unlock()
			return
		}

		params := *s.pending
		seq := s.pendingSeq
		s.pending = nil
		s.mu.Unlock()

		task := image.NewTask(s.imageID, s.format)
		task.Params = params

		result, err := s.processor.ProcessImage(s.ctx, task)
		if err != nil {
			s.log.Warnw("error rendering session update", "image_id", s.imageID, "error", err)
		}

		s.mu.Lock()
		// Discard out-of-order completions
		if seq > s.displayed {
			s.displayed = seq
			s.result = result
			s.err = err
		}
		s.mu.Unlock()
	}
}

// Latest returns the newest completed render and its sequence number
func (s *Session) Latest() (seq uint64, result []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.displayed, s.result, s.err
}

// Wait blocks until the session has no pending or in-flight renders
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if !s.inflight && s.pending == nil {
			s.mu.Unlock()
			return nil
		}

		if s.idle == nil {
			s.idle = make(chan struct{})
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ImageID returns the source image the session renders
func (s *Session) ImageID() string {
	return s.imageID
}

// Format returns the output format the session renders to
func (s *Session) Format() image.OutputFormat {
	return s.format
}

// Close cancels any in-flight render and releases the session
func (s *Session) Close() {
	s.cancel()
}
