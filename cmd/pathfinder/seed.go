package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"pathfinder/internal/colleges"
	"pathfinder/internal/timeline"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled colleges and timeline events into the database",
		Long:  "Inserts the bundled seed data. Rows that already exist are skipped, so seeding twice is harmless.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(e *env, db *sql.DB) error {
				static, err := colleges.LoadStatic()
				if err != nil {
					return err
				}
				nColleges, err := colleges.NewRepo(db).InsertMany(cmd.Context(), static)
				if err != nil {
					return fmt.Errorf("seeding colleges: %w", err)
				}

				nEvents, err := timeline.NewRepo(db).Seed(cmd.Context())
				if err != nil {
					return fmt.Errorf("seeding timeline: %w", err)
				}

				e.log.Info("seed complete", "colleges", nColleges, "timeline_events", nEvents)
				fmt.Printf("Seeded %d colleges and %d timeline events\n", nColleges, nEvents)
				return nil
			})
		},
	}
}
