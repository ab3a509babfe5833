package engine

import (
	"bytes"
	"context"
	"expvar"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pixetta/pixetta/internal/cache"
	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/pixelate"
	"github.com/pixetta/pixetta/internal/queue"
	"github.com/pixetta/pixetta/internal/tracing"
)

const jpegQuality = 90

// Processor is an image processor that renders pixelated images
type Processor struct {
	queue       *queue.Queue
	renderCache cache.Provider
	tracer      *tracing.Tracer
}

var (
	queueSize = expvar.NewInt("gauge_image_processor_queue_size")

	rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixetta_renders_total",
		Help: "Number of processed render tasks.",
	}, []string{"format"})

	renderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixetta_render_cache_hits_total",
		Help: "Number of render tasks served from the render cache.",
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pixetta_render_duration_seconds",
		Help:    "Time spent rendering images.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)

// New initializes a new processor instance
func New(ctx context.Context, log *logger.Logger, tracer *tracing.Tracer, workers int, sourceCache *image.Cache, renderCache cache.Provider) *Processor {
	workerQueue := queue.New(ctx, workers, taskProcessor(tracer, sourceCache))
	instance := &Processor{
		queue:       workerQueue,
		renderCache: renderCache,
		tracer:      tracer,
	}

	go workerQueue.Run()
	log.Infof("starting render worker queue with %d workers", workers)

	return instance
}

// ProcessImage renders an image according to the given task, and returns a buffer containing the encoded result
func (p *Processor) ProcessImage(ctx context.Context, task *image.Task) (processedImage []byte, err error) {
	ctx, span := p.tracer.Start(ctx, "engine.Processor.ProcessImage")
	defer span.End()

	cacheKey := task.CacheKey()
	if p.renderCache != nil {
		buffer, err := p.renderCache.Get(ctx, cacheKey)
		if err == nil {
			renderCacheHits.Inc()
			return buffer, nil
		}

		if err != cache.ErrNotFound {
			return nil, fmt.Errorf("error getting image from render cache: %s", err)
		}
	}

	queueSize.Add(1)
	timer := prometheus.NewTimer(renderDuration)
	result, err := p.queue.Process(ctx, task)
	timer.ObserveDuration()
	queueSize.Add(-1)

	if err != nil {
		return nil, err
	}

	buffer, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("error getting result")
	}

	rendersTotal.WithLabelValues(formatLabel(task.OutputFormat)).Inc()

	if p.renderCache != nil {
		if err := p.renderCache.Set(ctx, cacheKey, buffer); err != nil {
			return nil, fmt.Errorf("error setting image in render cache: %s", err)
		}
	}

	return buffer, nil
}

func taskProcessor(tracer *tracing.Tracer, sourceCache *image.Cache) queue.Handler {
	return func(ctx context.Context, data interface{}) (interface{}, error) {
		task, ok := data.(*image.Task)
		if !ok {
			return nil, fmt.Errorf("invalid data")
		}

		ctx, span := tracer.Start(ctx, "engine.taskProcessor")
		defer span.End()

		imageBuffer, err := sourceCache.Get(ctx, task.ImageID)
		if err != nil {
			return nil, fmt.Errorf("error getting image from cache: %s", err)
		}

		source, err := pixelate.Decode(imageBuffer)
		if err != nil {
			return nil, err
		}

		rendered := pixelate.Render(source, task.Params)

		var buffer bytes.Buffer
		switch task.OutputFormat {
		case image.JPEG:
			err = jpeg.Encode(&buffer, rendered, &jpeg.Options{Quality: jpegQuality})
		default:
			err = png.Encode(&buffer, rendered)
		}

		if err != nil {
			return nil, fmt.Errorf("error encoding image: %s", err)
		}

		return buffer.Bytes(), nil
	}
}

func formatLabel(format image.OutputFormat) string {
	switch format {
	case image.JPEG:
		return "jpeg"
	default:
		return "png"
	}
}
