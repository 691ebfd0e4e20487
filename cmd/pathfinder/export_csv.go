package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pathfinder/internal/colleges"
	"pathfinder/pkg/models"
)

func newExportCSVCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Export stored colleges as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(e *env, db *sql.DB) (err error) {
				items, err := colleges.NewRepo(db).All(cmd.Context())
				if err != nil {
					return err
				}

				var w io.Writer = os.Stdout
				if output != "" {
					f, ferr := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
					if ferr != nil {
						return fmt.Errorf("creating file: %w", ferr)
					}
					defer func() {
						if cerr := f.Close(); cerr != nil && err == nil {
							err = fmt.Errorf("closing file: %w", cerr)
						}
					}()
					w = f
				}

				if err := writeCollegesCSV(w, items); err != nil {
					return fmt.Errorf("writing csv: %w", err)
				}
				if output != "" {
					fmt.Printf("Exported %d colleges to %s\n", len(items), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

var csvHeader = []string{
	"id", "name", "location", "district", "state", "type", "established", "students", "rating",
	"programs", "fees_general", "cutoff_general", "website",
}

func writeCollegesCSV(w io.Writer, items []models.College) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, c := range items {
		established := ""
		if c.Established != nil {
			established = strconv.Itoa(*c.Established)
		}
		row := []string{
			c.ID,
			c.Name,
			c.Location,
			c.District,
			c.State,
			c.Type,
			established,
			strconv.Itoa(c.Students),
			formatFloat(c.Rating),
			strings.Join(c.Programs, "; "),
			formatFloat(c.Fees.General),
			formatFloat(c.Cutoffs.General),
			c.Website,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
