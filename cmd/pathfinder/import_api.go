package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"pathfinder/internal/colleges"
)

func newImportAPICmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "import-api",
		Short: "Fetch colleges from a remote JSON feed and store them",
		Long:  "Fetches a JSON array of loosely keyed college records, normalizes each one, and inserts them. Duplicates by name and state are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(e *env, db *sql.DB) error {
				if url == "" {
					url = e.cfg.Colleges.SourceURL
				}
				if url == "" {
					return fmt.Errorf("no source url: pass --url or set colleges.source_url")
				}

				src := colleges.NewRemoteSource(url, e.cfg.Colleges.RemoteTimeout)
				items, err := src.FetchAll(cmd.Context())
				if err != nil {
					return err
				}

				n, err := colleges.NewRepo(db).InsertMany(cmd.Context(), items)
				if err != nil {
					return fmt.Errorf("storing colleges: %w", err)
				}

				e.log.Info("import complete", "source", src.Name(), "fetched", len(items), "inserted", n)
				fmt.Printf("Fetched %d colleges, inserted %d\n", len(items), n)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "source URL (default: colleges.source_url from config)")
	return cmd
}
