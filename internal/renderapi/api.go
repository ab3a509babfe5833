package renderapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/pixetta/pixetta/internal/handler"
	"github.com/pixetta/pixetta/internal/health"
	"github.com/pixetta/pixetta/internal/hmac"
	"github.com/pixetta/pixetta/internal/image"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/studio"
	"github.com/pixetta/pixetta/internal/tracing"
)

// API is a http api
type API struct {
	ImageProcessor image.Processor
	Studio         *studio.Registry
	HealthChecker  *health.Checker
	Log            *logger.Logger
	Tracer         *tracing.Tracer
	HandlerTimeout time.Duration
	HMAC           *hmac.HMAC
}

// Utility methods for logging
func (a *API) logError(r *http.Request, message string, err error) {
	a.Log.Errorw(message, handler.LogFields(r, "error", err)...)
}

// Router returns a http router
func (a *API) Router() http.Handler {
	router := mux.NewRouter()

	router.NotFoundHandler = handler.Handler(a.notFoundHandler)

	// Redirect trailing slashes
	router.StrictSlash(true)

	// Healthcheck
	router.Handle("/health", handler.Health(a.HealthChecker)).Methods("GET")

	// Image by ID routes
	router.Handle("/id/{id:[0-9a-zA-Z-_]+}{extension:(?:\\.[a-z]+)?}", handler.Handler(a.imageHandler)).Methods("GET")

	// Query parameters:
	// ?pixel={size} - Pixelation block size
	// ?brightness={value} - Brightness multiplier
	// ?contrast={value} - Contrast multiplier
	// ?shadow={radius} - Drop-shadow blur radius

	// ?hmac - HMAC signature of the path and URL parameters

	// Interactive studio sessions
	router.Handle("/studio", handler.Handler(a.createSessionHandler)).Methods("POST")
	router.Handle("/studio/{sessionID}/params", handler.Handler(a.updateSessionHandler)).Methods("PUT")
	router.Handle("/studio/{sessionID}/render", handler.Handler(a.sessionRenderHandler)).Methods("GET")
	router.Handle("/studio/{sessionID}", handler.Handler(a.closeSessionHandler)).Methods("DELETE")

	routeMatcher := &handler.MuxRouteMatcher{Router: router}
	corsHandler := cors.New(cors.Options{
		ExposedHeaders: []string{"Pixetta-ID"},
	})

	// Set up handlers for adding a request id, handling panics, request logging, metrics, tracing, CORS, and handler execution timeout
	return handler.AddRequestID(
		handler.Recovery(a.Log,
			handler.Logger(a.Log,
				handler.Metrics(
					handler.Tracer(a.Tracer,
						corsHandler.Handler(
							http.TimeoutHandler(router, a.HandlerTimeout, "Something went wrong. Timed out."),
						), routeMatcher),
					routeMatcher))))
}

// Handle not found errors
var notFoundError = &handler.Error{
	Message: "page not found",
	Code:    http.StatusNotFound,
}

func (a *API) notFoundHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	return notFoundError
}
