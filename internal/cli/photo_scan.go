package cli

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarlsen/divelog/internal/config"
	"github.com/mkarlsen/divelog/internal/database"
	"github.com/mkarlsen/divelog/internal/database/dives"
	"github.com/mkarlsen/divelog/internal/database/photos"
	"github.com/mkarlsen/divelog/internal/exifscan"
	"github.com/mkarlsen/divelog/internal/services"
)

// PhotoScanCommand scans photo directories, stores the extracted metadata
// and prints the clustered groups with suggested dive assignments.
type PhotoScanCommand struct {
	Paths        []string
	DatabasePath string
	TripID       uint
	GapMinutes   int
	Verbose      bool
}

func NewPhotoScanCommand() *PhotoScanCommand {
	return &PhotoScanCommand{}
}

func (cmd *PhotoScanCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("photo-scan", flag.ExitOnError)

	var paths string
	var tripID uint64
	fs.StringVar(&paths, "dirs", "", "Comma-separated list of photo directories to scan (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.Uint64Var(&tripID, "trip", 0, "Trip ID to correlate the photos against")
	fs.IntVar(&cmd.GapMinutes, "gap", config.DefaultGapThresholdMinutes, "Minutes of silence that separate two photo groups")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s photo-scan -dirs <path>[,<path>...] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Scan directories for photos, extract EXIF metadata and cluster the\n")
		fmt.Fprintf(os.Stderr, "photos into bursts. With -trip the bursts are matched against that\n")
		fmt.Fprintf(os.Stderr, "trip's dives in chronological order.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s photo-scan -dirs ~/Pictures/Maldives -trip 3\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if paths == "" {
		return fmt.Errorf("required flag -dirs not provided")
	}
	for _, p := range strings.Split(paths, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cmd.Paths = append(cmd.Paths, trimmed)
		}
	}

	cmd.TripID = uint(tripID)
	return nil
}

func (cmd *PhotoScanCommand) Run() error {
	fmt.Println("Photo Scan")
	fmt.Println("==========")

	for _, p := range cmd.Paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("photo directory not found: %s", p)
		}
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var permissive exifscan.Backend
	exiftoolBackend, err := exifscan.NewExiftoolBackend()
	if err != nil {
		log.Printf("exiftool not available, falling back to strict EXIF parsing: %v", err)
	} else {
		permissive = exiftoolBackend
		defer exiftoolBackend.Close()
	}

	resolver := exifscan.NewFusionResolver(permissive, exifscan.NewIFDBackend())
	service := services.NewPhotoService(
		photos.NewRepository(db.DB),
		dives.NewRepository(db.DB),
		exifscan.NewScanner(resolver),
		cmd.GapMinutes,
	)

	fmt.Printf("Scanning %d directories...\n", len(cmd.Paths))
	result, err := service.ScanAndGroup(cmd.Paths, cmd.TripID, cmd.GapMinutes)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Println("\n=== Scan Summary ===")
	fmt.Printf("Photos scanned: %d\n", result.PhotosScanned)
	fmt.Printf("Groups: %d\n", len(result.Groups))
	fmt.Printf("Photos without capture time: %d\n", len(result.Untimed))

	for i, group := range result.Groups {
		suggestion := "no dive match"
		if group.SuggestedDiveNumber != nil {
			suggestion = fmt.Sprintf("dive #%d", *group.SuggestedDiveNumber)
		}
		fmt.Printf("\nGroup %d: %d photos, %s to %s (%s)\n",
			i+1, len(group.Photos),
			group.StartTime.Format("15:04:05"), group.EndTime.Format("15:04:05"),
			suggestion)
		if cmd.Verbose {
			for _, photo := range group.Photos {
				fmt.Printf("  %s (%s)\n", photo.FileName, photo.CaptureTime)
			}
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", errMsg)
		}
	}

	fmt.Println("\nScan complete!")
	return nil
}
