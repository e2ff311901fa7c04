package cli

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/referenciales/referenciales/internal/config"
	"github.com/referenciales/referenciales/internal/csvimport"
	"github.com/referenciales/referenciales/internal/database"
)

// ImportCSVCommand bulk-imports referenciales from a CSV file on disk,
// using the same validation and transaction rules as the upload endpoint.
type ImportCSVCommand struct {
	FilePath     string
	DatabasePath string
	UserID       uint
	DryRun       bool
}

func NewImportCSVCommand() *ImportCSVCommand {
	return &ImportCSVCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportCSVCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the CSV file to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	userID := fs.Uint("user", 0, "User ID to attribute the imported records to")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-csv -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import referenciales from a CSV file. The delimiter (comma or\n")
		fmt.Fprintf(os.Stderr, "semicolon) is detected from the header row. The import is\n")
		fmt.Fprintf(os.Stderr, "all-or-nothing: any validation error rejects the whole file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.UserID = uint(*userID)

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}
	return nil
}

// Run executes the import
func (cmd *ImportCSVCommand) Run() error {
	raw, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.FilePath, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%s is empty", cmd.FilePath)
	}

	delimiter := csvimport.DetectDelimiter(string(raw))
	fmt.Printf("Detected delimiter: %q\n", delimiter)

	records, err := csvimport.Parse(bytes.NewReader(raw), delimiter)
	if err != nil {
		return fmt.Errorf("parse CSV: %w", err)
	}
	fmt.Printf("Parsed %d data rows\n", len(records))

	if validationErrors := csvimport.Validate(records); len(validationErrors) > 0 {
		for _, ve := range validationErrors {
			fmt.Fprintf(os.Stderr, "  fila %d, %s: %s\n", ve.Row, ve.Field, ve.Message)
		}
		return fmt.Errorf("%d validation errors, nothing imported", len(validationErrors))
	}

	if cmd.DryRun {
		fmt.Printf("Dry run: %d rows are valid, nothing written\n", len(records))
		return nil
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	count, err := csvimport.NewImporter(db.DB).Import(records, cmd.UserID)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	fmt.Printf("Imported %d referenciales\n", count)
	return nil
}
