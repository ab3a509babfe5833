package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/pixetta/pixetta/internal/database"
	"github.com/pixetta/pixetta/internal/handler"
	"github.com/pixetta/pixetta/internal/health"
	"github.com/pixetta/pixetta/internal/hmac"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/storage"
	"github.com/pixetta/pixetta/internal/tracing"
)

// API is a http api
type API struct {
	Database         database.Provider
	Storage          storage.Provider
	HealthChecker    *health.Checker
	Log              *logger.Logger
	Tracer           *tracing.Tracer
	RootURL          string
	RenderServiceURL string
	HandlerTimeout   time.Duration
	HMAC             *hmac.HMAC
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

	// Image upload
	router.Handle("/upload", handler.Handler(a.uploadHandler)).Methods("POST")

	// Image list
	router.Handle("/v2/list", handler.Handler(a.listHandler)).Methods("GET")

	// Query parameters:
	// ?page={page} - What page to display
	// ?limit={limit} - How many entries to display per page

	// Image info routes
	router.Handle("/id/{id}/info", handler.Handler(a.infoHandler)).Methods("GET")

	// Image by ID routes
	router.Handle("/id/{id:[0-9a-zA-Z-_]+}{extension:(?:\\.[a-z]+)?}", handler.Handler(a.imageRedirectHandler)).Methods("GET")

	// Query parameters:
	// ?pixel={size} - Pixelation block size
	// ?brightness={value} - Brightness multiplier
	// ?contrast={value} - Contrast multiplier
	// ?shadow={radius} - Drop-shadow blur radius

	routeMatcher := &handler.MuxRouteMatcher{Router: router}
	corsHandler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
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
