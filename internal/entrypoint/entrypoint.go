package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/divelog/internal/config"
	"github.com/mkarlsen/divelog/internal/database"
	"github.com/mkarlsen/divelog/internal/database/dives"
	"github.com/mkarlsen/divelog/internal/database/photos"
	"github.com/mkarlsen/divelog/internal/exifscan"
	http_controllers "github.com/mkarlsen/divelog/internal/http"
	"github.com/mkarlsen/divelog/internal/scheduler"
	"github.com/mkarlsen/divelog/internal/services"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Divelog v%s", version)

	for _, dir := range cfg.Photos.Dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			log.Printf("WARNING: photo directory %s does not exist", dir)
		}
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	diveRepo := dives.NewRepository(db.DB)
	photoRepo := photos.NewRepository(db.DB)

	// The exiftool backend needs the exiftool binary on PATH. Without it
	// the strict parser alone still covers standard JPEGs.
	var permissive exifscan.Backend
	exiftoolBackend, err := exifscan.NewExiftoolBackend()
	if err != nil {
		log.Printf("WARNING: exiftool not available, RAW and TIFF coverage reduced: %v", err)
	} else {
		permissive = exiftoolBackend
		defer func() {
			if err := exiftoolBackend.Close(); err != nil {
				log.Printf("Error closing exiftool: %v", err)
			}
		}()
	}

	resolver := exifscan.NewFusionResolver(permissive, exifscan.NewIFDBackend())
	scanner := exifscan.NewScanner(resolver)

	importService := services.NewImportService(diveRepo)
	photoService := services.NewPhotoService(photoRepo, diveRepo, scanner, cfg.Photos.GapThresholdMinutes)

	var rescan *scheduler.PhotoRescanScheduler
	var rescanCancel context.CancelFunc
	if cfg.Rescan.Enabled {
		rescan = scheduler.NewPhotoRescanScheduler(photoService, cfg.Photos.Dirs, cfg.Rescan.Schedule)

		var rescanCtx context.Context
		rescanCtx, rescanCancel = context.WithCancel(context.Background())
		if err := rescan.Start(rescanCtx); err != nil {
			log.Fatalf("Failed to start photo rescan scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		TripReader:    diveRepo,
		ImportService: importService,
		PhotoService:  photoService,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if rescan != nil {
			rescan.Stop()
			rescanCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
