package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkarlsen/divelog/internal/config"
	"github.com/mkarlsen/divelog/internal/database"
	"github.com/mkarlsen/divelog/internal/database/dives"
	"github.com/mkarlsen/divelog/internal/importers"
	"github.com/mkarlsen/divelog/internal/services"
)

// LogImportCommand imports a dive computer log file into the database.
type LogImportCommand struct {
	LogPath      string
	DatabasePath string
	TripID       uint
	Verbose      bool
	DryRun       bool
}

func NewLogImportCommand() *LogImportCommand {
	return &LogImportCommand{}
}

func (cmd *LogImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var tripID uint64
	fs.StringVar(&cmd.LogPath, "file", "", "Path to the dive log file (.ssrf, .xml, .json or .fit) (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file for storing imported dives")
	fs.Uint64Var(&tripID, "trip", 0, "Trip ID to append the dives to (a new trip is created when omitted)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a dive computer log into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "The file extension selects the parser: .ssrf and .xml are parsed as\n")
		fmt.Fprintf(os.Stderr, "Subsurface XML, .json as vendor JSON export, .fit as Garmin FIT.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import into a fresh trip:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file dives.ssrf\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Append to an existing trip:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file day2.fit -trip 3\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.LogPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	cmd.TripID = uint(tripID)
	return nil
}

func (cmd *LogImportCommand) Run() error {
	fmt.Println("Dive Log Import")
	fmt.Println("===============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.LogPath); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", cmd.LogPath)
	}

	fmt.Printf("File: %s\n", cmd.LogPath)

	if cmd.DryRun {
		result, err := importers.ImportFile(cmd.LogPath)
		if err != nil {
			return fmt.Errorf("failed to parse log: %w", err)
		}

		fmt.Printf("\nFound %d dives (%s to %s)\n", len(result.Dives), result.StartDate, result.EndDate)
		if cmd.Verbose {
			for i, dive := range result.Dives {
				fmt.Printf("%d. dive #%d on %s %s, %d samples, max depth %.1f m\n",
					i+1, dive.Number, dive.Date, dive.Time, len(dive.Samples), dive.MaxDepthM)
			}
		}
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	service := services.NewImportService(dives.NewRepository(db.DB))
	summary, err := service.ImportFile(cmd.LogPath, cmd.TripID)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Trip: %s (id %d)\n", summary.TripName, summary.TripID)
	fmt.Printf("Dives imported: %d\n", summary.DivesImported)
	fmt.Printf("Samples stored: %d\n", summary.Samples)
	if cmd.Verbose {
		fmt.Printf("Events stored: %d\n", summary.Events)
		fmt.Printf("Tank pressure readings: %d\n", summary.TankPressures)
		fmt.Printf("Tanks stored: %d\n", summary.Tanks)
	}

	fmt.Println("\nImport complete!")
	return nil
}
