package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/pixetta/pixetta/internal/api"
	"github.com/pixetta/pixetta/internal/cmd"
	"github.com/pixetta/pixetta/internal/hmac"

	"github.com/pixetta/pixetta/internal/database"
	fileDatabase "github.com/pixetta/pixetta/internal/database/file"
	"github.com/pixetta/pixetta/internal/health"
	"github.com/pixetta/pixetta/internal/logger"
	"github.com/pixetta/pixetta/internal/metrics"
	"github.com/pixetta/pixetta/internal/storage"
	fileStorage "github.com/pixetta/pixetta/internal/storage/file"
	"github.com/pixetta/pixetta/internal/storage/spaces"
	"github.com/pixetta/pixetta/internal/tracing"

	"github.com/jamiealquiza/envy"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// Comandline flags
var (
	// Global
	listen           = flag.String("listen", ":8080", "listen address")
	metricsListen    = flag.String("metrics-listen", ":8083", "metrics listen address")
	rootURL          = flag.String("root-url", "https://pixetta.com", "root url")
	renderServiceURL = flag.String("render-service-url", "https://r.pixetta.com", "render service url")
	loglevel         = zap.LevelFlag("log-level", zap.InfoLevel, "log level (default \"info\") (debug, info, warn, error, dpanic, panic, fatal)")

	// Database
	databaseBackend = flag.String("database", "file", "which database backend to use (file)")

	// Database - File
	databaseFilePath = flag.String("database-file-path", "./test/fixtures/file/metadata.json", "path to the database file")

	// Storage
	storageBackend = flag.String("storage", "file", "which storage backend to use (file, spaces)")

	// Storage - File
	storageFilePath = flag.String("storage-file-path", "./test/fixtures/file", "path to the file storage")

	// Storage - Spaces
	storageSpacesSpace          = flag.String("storage-spaces-space", "", "digitalocean space to use")
	storageSpacesEndpoint       = flag.String("storage-spaces-endpoint", "", "spaces endpoint")
	storageSpacesAccessKey      = flag.String("storage-spaces-access-key", "", "spaces access key")
	storageSpacesSecretKey      = flag.String("storage-spaces-secret-key", "", "spaces secret key")
	storageSpacesForcePathStyle = flag.Bool("storage-spaces-force-path-style", false, "use path-style addressing for spaces")

	// HMAC
	hmacKey = flag.String("hmac-key", "", "hmac key to use for authentication between services")
)

func main() {
	// Parse environment variables
	envy.Parse("PIXETTA")

	// Parse commandline flags
	flag.Parse()

	// Initialize the logger
	log := logger.New(*loglevel)
	defer log.Sync()

	// Set GOMAXPROCS
	maxprocs.Set(maxprocs.Logger(log.Infof))

	// Set up context for shutting down
	shutdownCtx, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	// Initialize tracing
	tracer, err := tracing.New(shutdownCtx, log, "pixetta")
	if err != nil {
		log.Fatalf("error initializing tracing: %s", err)
	}
	defer tracer.Shutdown(context.Background())

	// Initialize the database and storage
	db, store, err := setupBackends()
	if err != nil {
		log.Fatalf("error initializing backends: %s", err)
	}
	defer db.Shutdown()

	// Initialize and start the health checker
	checkerCtx, checkerCancel := context.WithCancel(context.Background())
	defer checkerCancel()

	checker := &health.Checker{
		Ctx:      checkerCtx,
		Database: db,
		Log:      log,
	}
	go checker.Run()

	// Start the metrics http server
	go metrics.Serve(shutdownCtx, log, checker, *metricsListen)

	// Start and listen on http
	api := &api.API{
		Database:         db,
		Storage:          store,
		HealthChecker:    checker,
		Log:              log,
		Tracer:           tracer,
		RootURL:          *rootURL,
		RenderServiceURL: *renderServiceURL,
		HandlerTimeout:   cmd.HandlerTimeout,
		HMAC: &hmac.HMAC{
			Key: []byte(*hmacKey),
		},
	}
	server := &http.Server{
		Addr:         *listen,
		Handler:      api.Router(),
		ReadTimeout:  cmd.ReadTimeout,
		WriteTimeout: cmd.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Infof("shutting down the http server: %s", err)
			shutdown()
		}
	}()

	log.Infof("http server listening on %s", *listen)

	// Wait for shutdown or error
	err = cmd.WaitForInterrupt(shutdownCtx)
	log.Infof("shutting down: %s", err)

	// Shut down http server
	serverCtx, serverCancel := context.WithTimeout(context.Background(), cmd.WriteTimeout)
	defer serverCancel()
	if err := server.Shutdown(serverCtx); err != nil {
		log.Warnf("error shutting down: %s", err)
	}
}

func setupBackends() (db database.Provider, store storage.Provider, err error) {
	// Database
	switch *databaseBackend {
	case "file":
		db, err = fileDatabase.New(*databaseFilePath)
	default:
		err = fmt.Errorf("invalid database backend")
	}

	if err != nil {
		return
	}

	// Storage
	switch *storageBackend {
	case "file":
		store, err = fileStorage.New(*storageFilePath)
	case "spaces":
		store, err = spaces.New(*storageSpacesSpace, *storageSpacesEndpoint, *storageSpacesAccessKey, *storageSpacesSecretKey, *storageSpacesForcePathStyle)
	default:
		err = fmt.Errorf("invalid storage backend")
	}

	return
}
