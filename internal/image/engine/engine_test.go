package engine_test

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/pixetta/pixetta/internal/cache/memory"
	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/image/engine"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/pixelate"
	"github.com/pixetta/pixetta/internal/storage/file"
	"github.com/pixetta/pixetta/internal/tracing/test"
	"go.uber.org/zap"
)

func setup() (context.CancelFunc, *engine.Processor, error) {
	log := logger.New(zap.ErrorLevel)
	defer log.Sync()

	tracer := test.Tracer(log)

	ctx, cancel := context.WithCancel(context.Background())
	storage, err := file.New("../../../test/fixtures/file")
	if err != nil {
		cancel()
		return nil, nil, err
	}

	sourceCache := image.NewCache(tracer, memory.New(), storage)
	processor := engine.New(ctx, log, tracer, 2, sourceCache, memory.New())

	return cancel, processor, nil
}

func renderFixture(t *testing.T, params pixelate.Params) []byte {
	t.Helper()

	buf, err := os.ReadFile("../../../test/fixtures/file/1.png")
	if err != nil {
		t.Fatal(err)
	}

	source, err := pixelate.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}

	var result bytes.Buffer
	if err := png.Encode(&result, pixelate.Render(source, params)); err != nil {
		t.Fatal(err)
	}

	return result.Bytes()
}

func TestEngine(t *testing.T) {
	cancel, processor, err := setup()
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	t.Run("process image", func(t *testing.T) {
		task := image.NewTask("1", image.PNG).Pixelate(2).Brightness(1.2).Contrast(1.5)

		buffer, err := processor.ProcessImage(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}

		expected := renderFixture(t, task.Params)
		if !reflect.DeepEqual(buffer, expected) {
			t.Error("image data doesn't match")
		}
	})

	t.Run("process image is deterministic", func(t *testing.T) {
		task := image.NewTask("1", image.PNG).Pixelate(2).Shadow(3)

		first, err := processor.ProcessImage(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}

		second, err := processor.ProcessImage(context.Background(), task)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Error("image data doesn't match")
		}
	})

	t.Run("process image encodes jpeg", func(t *testing.T) {
		buffer, err := processor.ProcessImage(context.Background(), image.NewTask("1", image.JPEG))
		if err != nil {
			t.Fatal(err)
		}

		// JPEG SOI marker
		if len(buffer) < 2 || buffer[0] != 0xff || buffer[1] != 0xd8 {
			t.Error("expected jpeg output")
		}
	})

	t.Run("process image handles missing images", func(t *testing.T) {
		_, err := processor.ProcessImage(context.Background(), image.NewTask("foo", image.PNG))
		if err == nil || !strings.HasPrefix(err.Error(), "error getting image from cache:") {
			t.Errorf("wrong error %v", err)
		}
	})

	t.Run("process image handles invalid source data", func(t *testing.T) {
		task := image.NewTask("bad", image.PNG)
		_, err := processor.ProcessImage(context.Background(), task)
		if err == nil || !strings.HasPrefix(err.Error(), "error decoding source image:") {
			t.Errorf("wrong error %v", err)
		}
	})
}

func TestEngineShutdown(t *testing.T) {
	cancel, processor, err := setup()
	if err != nil {
		t.Fatal(err)
	}

	cancel()

	_, err = processor.ProcessImage(context.Background(), image.NewTask("1", image.PNG))
	if err == nil || err.Error() != "queue has been shutdown" {
		t.Errorf("wrong error %v", err)
	}
}
