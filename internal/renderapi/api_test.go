package renderapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/pixetta/pixetta/internal/hmac"
	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/params"
	"github.com/pixetta/pixetta/internal/pixelate"
	api "github.com/pixetta/pixetta/internal/renderapi"
	"github.com/pixetta/pixetta/internal/studio"
	"github.com/pixetta/pixetta/internal/tracing"
	"github.com/pixetta/pixetta/internal/tracing/test"
	"go.uber.org/zap"

	engineProcessor "github.com/pixetta/pixetta/internal/image/engine"
	mockProcessor "github.com/pixetta/pixetta/internal/image/mock"

	fileStorage "github.com/pixetta/pixetta/internal/storage/file"

	memoryCache "github.com/pixetta/pixetta/internal/cache/memory"

	"testing"
)

func setup(t *testing.T, ctx context.Context) (*logger.Logger, *tracing.Tracer, image.Processor, *hmac.HMAC) {
	t.Helper()

	log := logger.New(zap.FatalLevel)
	tracer := test.Tracer(log)

	storage, _ := fileStorage.New("../../test/fixtures/file")
	imageCache := image.NewCache(tracer, memoryCache.New(), storage)
	imageProcessor := engineProcessor.New(ctx, log, tracer, 3, imageCache, memoryCache.New())

	hmac := &hmac.HMAC{
		Key: []byte("test"),
	}

	t.Cleanup(func() {
		log.Sync()
	})

	return log, tracer, imageProcessor, hmac
}

func newAPI(log *logger.Logger, tracer *tracing.Tracer, processor image.Processor, h *hmac.HMAC) *api.API {
	return &api.API{
		ImageProcessor: processor,
		Studio:         studio.NewRegistry(context.Background(), log, processor),
		Log:            log,
		Tracer:         tracer,
		HandlerTimeout: time.Minute,
		HMAC:           h,
	}
}

// renderFixture renders the source fixture directly through the engine
func renderFixture(t *testing.T, params pixelate.Params) []byte {
	t.Helper()

	buf, err := os.ReadFile("../../test/fixtures/file/1.png")
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

func TestAPI(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, tracer, imageProcessor, h := setup(t, ctx)

	router := newAPI(log, tracer, imageProcessor, h).Router()
	mockProcessorRouter := newAPI(log, tracer, &mockProcessor.Processor{}, h).Router()

	tests := []struct {
		Name             string
		URL              string
		Router           http.Handler
		ExpectedStatus   int
		ExpectedResponse []byte
		HMAC             bool
	}{
		// Errors
		{"missing hmac", "/id/1.png", router, http.StatusForbidden, []byte("invalid signature\n"), false},
		{"invalid parameters", "/id/1.png?pixel=100", router, http.StatusBadRequest, []byte(params.ErrInvalidPixelSize.Error() + "\n"), true},
		{"invalid extension", "/id/1.gif", router, http.StatusBadRequest, []byte(params.ErrInvalidFileExtension.Error() + "\n"), true},
		// 404
		{"404", "/asdf", router, http.StatusNotFound, []byte("page not found\n"), true},
		// Processor errors
		{"processor error", "/id/1.png", mockProcessorRouter, http.StatusInternalServerError, []byte("Something went wrong\n"), true},
	}

	for _, test := range tests {
		w := httptest.NewRecorder()

		if test.HMAC {
			u, _ := url.Parse(test.URL)
			signedURL, err := params.HMAC(h, u.Path, u.Query())
			if err != nil {
				t.Errorf("%s: hmac error %s", test.Name, err)
				continue
			}

			test.URL = signedURL
		}

		req, _ := http.NewRequest("GET", test.URL, nil)
		test.Router.ServeHTTP(w, req)
		if w.Code != test.ExpectedStatus {
			t.Errorf("%s: wrong response code, %#v", test.Name, w.Code)
			continue
		}

		if !reflect.DeepEqual(w.Body.Bytes(), test.ExpectedResponse) {
			t.Errorf("%s: wrong response %#v", test.Name, w.Body.String())
		}
	}

	pixelated := pixelate.DefaultParams()
	pixelated.PixelSize = 2

	shadowed := pixelate.DefaultParams()
	shadowed.PixelSize = 2
	shadowed.Brightness = 1.5
	shadowed.ShadowRadius = 4

	imageTests := []struct {
		Name                       string
		URL                        string
		ExpectedResponse           []byte
		ExpectedContentDisposition string
		ExpectedContentType        string
	}{
		{"/id/:id", "/id/1", renderFixture(t, pixelate.DefaultParams()), "inline; filename=\"1.png\"", "image/png"},
		{"/id/:id.png?pixel=2", "/id/1.png?pixel=2", renderFixture(t, pixelated), "inline; filename=\"1-pixel_2.png\"", "image/png"},
		{"/id/:id.png?pixel=2&brightness=1.5&shadow=4", "/id/1.png?pixel=2&brightness=1.5&shadow=4", renderFixture(t, shadowed), "inline; filename=\"1-pixel_2-brightness_1.5-shadow_4.png\"", "image/png"},
	}

	for _, test := range imageTests {
		w := httptest.NewRecorder()

		u, err := url.Parse(test.URL)
		if err != nil {
			t.Errorf("%s: url error %s", test.Name, err)
			continue
		}

		signedURL, err := params.HMAC(h, u.Path, u.Query())
		if err != nil {
			t.Errorf("%s: hmac error %s", test.Name, err)
			continue
		}

		req, _ := http.NewRequest("GET", signedURL, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: wrong response code, %#v", test.Name, w.Code)
			continue
		}

		if contentType := w.Header().Get("Content-Type"); contentType != test.ExpectedContentType {
			t.Errorf("%s: wrong content type, %#v", test.Name, contentType)
		}

		if cacheControl := w.Header().Get("Cache-Control"); cacheControl != "public, max-age=2592000" {
			t.Errorf("%s: wrong cache header, %#v", test.Name, cacheControl)
		}

		if contentDisposition := w.Header().Get("Content-Disposition"); contentDisposition != test.ExpectedContentDisposition {
			t.Errorf("%s: wrong content disposition header, %#v", test.Name, contentDisposition)
		}

		if imageID := w.Header().Get("Pixetta-ID"); imageID != "1" {
			t.Errorf("%s: wrong image id header, %#v", test.Name, imageID)
		}

		if !reflect.DeepEqual(w.Body.Bytes(), test.ExpectedResponse) {
			t.Errorf("%s: wrong response/image data", test.Name)
		}
	}

	t.Run("jpg output", func(t *testing.T) {
		w := httptest.NewRecorder()

		signedURL, err := params.HMAC(h, "/id/1.jpg", url.Values{})
		if err != nil {
			t.Fatal(err)
		}

		req, _ := http.NewRequest("GET", signedURL, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("wrong response code, %#v", w.Code)
		}

		if contentType := w.Header().Get("Content-Type"); contentType != "image/jpeg" {
			t.Errorf("wrong content type, %#v", contentType)
		}

		body := w.Body.Bytes()
		if len(body) < 2 || body[0] != 0xff || body[1] != 0xd8 {
			t.Error("expected jpeg output")
		}
	})
}

func TestStudioAPI(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, tracer, imageProcessor, h := setup(t, ctx)
	router := newAPI(log, tracer, imageProcessor, h).Router()

	createSession := func(t *testing.T, body string) (int, string) {
		t.Helper()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/studio", strings.NewReader(body))
		router.ServeHTTP(w, req)

		var response struct {
			SessionID string `json:"session_id"`
		}
		json.Unmarshal(w.Body.Bytes(), &response)

		return w.Code, response.SessionID
	}

	t.Run("create session", func(t *testing.T) {
		code, sessionID := createSession(t, `{"image_id": "1"}`)
		if code != http.StatusCreated {
			t.Fatalf("wrong response code, %#v", code)
		}
		if sessionID == "" {
			t.Fatal("missing session id")
		}
	})

	t.Run("create session requires an image id", func(t *testing.T) {
		code, _ := createSession(t, `{}`)
		if code != http.StatusBadRequest {
			t.Fatalf("wrong response code, %#v", code)
		}
	})

	t.Run("create session rejects invalid extensions", func(t *testing.T) {
		code, _ := createSession(t, `{"image_id": "1", "extension": ".gif"}`)
		if code != http.StatusBadRequest {
			t.Fatalf("wrong response code, %#v", code)
		}
	})

	t.Run("render before any update", func(t *testing.T) {
		_, sessionID := createSession(t, `{"image_id": "1"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/studio/"+sessionID+"/render", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("wrong response code, %#v", w.Code)
		}
	})

	t.Run("update and render", func(t *testing.T) {
		_, sessionID := createSession(t, `{"image_id": "1"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/studio/"+sessionID+"/params?pixel=2", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusAccepted {
			t.Fatalf("wrong response code, %#v", w.Code)
		}

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/studio/"+sessionID+"/render", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("wrong response code, %#v", w.Code)
		}

		if contentType := w.Header().Get("Content-Type"); contentType != "image/png" {
			t.Errorf("wrong content type, %#v", contentType)
		}

		if imageID := w.Header().Get("Pixetta-ID"); imageID != "1" {
			t.Errorf("wrong image id header, %#v", imageID)
		}

		expectedParams := pixelate.DefaultParams()
		expectedParams.PixelSize = 2
		if !reflect.DeepEqual(w.Body.Bytes(), renderFixture(t, expectedParams)) {
			t.Error("wrong response/image data")
		}
	})

	t.Run("update rejects invalid parameters", func(t *testing.T) {
		_, sessionID := createSession(t, `{"image_id": "1"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/studio/"+sessionID+"/params?brightness=9", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("wrong response code, %#v", w.Code)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		for _, route := range []struct {
			method string
			url    string
		}{
			{"PUT", "/studio/missing/params?pixel=2"},
			{"GET", "/studio/missing/render"},
			{"DELETE", "/studio/missing"},
		} {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(route.method, route.url, nil)
			router.ServeHTTP(w, req)
			if w.Code != http.StatusNotFound {
				t.Errorf("%s %s: wrong response code, %#v", route.method, route.url, w.Code)
			}
		}
	})

	t.Run("close session", func(t *testing.T) {
		_, sessionID := createSession(t, `{"image_id": "1"}`)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/studio/"+sessionID, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("wrong response code, %#v", w.Code)
		}

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/studio/"+sessionID+"/render", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("wrong response code, %#v", w.Code)
		}
	})
}
