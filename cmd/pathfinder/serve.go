package main

import (
	"github.com/spf13/cobra"

	"pathfinder/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr, grpcAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the gRPC health service when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			defer e.log.Sync()

			if addr != "" {
				e.cfg.HTTP.Addr = addr
			}
			if grpcAddr != "" {
				e.cfg.GRPC.Addr = grpcAddr
			}
			return server.Run(cmd.Context(), e.cfg, e.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC health listen address (overrides config)")
	return cmd
}
