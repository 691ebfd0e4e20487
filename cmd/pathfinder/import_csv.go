package main

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pathfinder/internal/colleges"
	"pathfinder/internal/normalize"
)

func newImportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-csv <file>",
		Short: "Import colleges from a CSV export of a college directory",
		Long:  "Reads a CSV whose header row names the source columns (College Name, State, Rating, ...), normalizes each row, and inserts them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening csv: %w", err)
			}
			defer f.Close()

			records, err := readCSVRecords(f)
			if err != nil {
				return err
			}
			items := normalize.NormalizeAll(records)

			return withDB(func(e *env, db *sql.DB) error {
				n, err := colleges.NewRepo(db).InsertMany(cmd.Context(), items)
				if err != nil {
					return fmt.Errorf("storing colleges: %w", err)
				}
				e.log.Info("csv import complete", "file", args[0], "rows", len(records), "inserted", n)
				fmt.Printf("Read %d rows, inserted %d colleges\n", len(records), n)
				return nil
			})
		},
	}
	return cmd
}

// readCSVRecords maps each data row onto its header names. Blank header
// cells and blank values are left out of the record.
func readCSVRecords(r io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []map[string]any
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				rec[header[i]] = cell
			}
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out, nil
}
