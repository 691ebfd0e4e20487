package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"pathfinder/internal/auth"
	"pathfinder/internal/colleges"
	"pathfinder/internal/events"
	"pathfinder/internal/grpcserver"
	"pathfinder/internal/saved"
	"pathfinder/pkg/database"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// OpenDB opens and migrates the database named by cfg, falling back to the
// per-user default path.
func OpenDB(cfg utils.Config) (*sql.DB, error) {
	dbCfg := database.DefaultConfig()
	if cfg.DB.Path != "" {
		dbCfg.Path = cfg.DB.Path
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return db, nil
}

// BuildDeps wires the runtime dependencies from configuration.
func BuildDeps(cfg utils.Config, db *sql.DB, log *logger.Logger) (Deps, error) {
	static, err := colleges.LoadStaticRecords()
	if err != nil {
		return Deps{}, err
	}

	d := Deps{
		DB:     db,
		Tokens: auth.TokenService{
			Secret:   []byte(cfg.Auth.JWTSecret),
			Issuer:   cfg.Auth.JWTIssuer,
			Duration: cfg.Auth.JWTDuration,
		},
		Hub:         events.NewHub(log),
		Index:       saved.NewSlugIndex(static),
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log,
	}
	if cfg.Colleges.SourceURL != "" {
		d.Remote = colleges.NewRemoteSource(cfg.Colleges.SourceURL, cfg.Colleges.RemoteTimeout)
	}
	return d, nil
}

// Run serves the HTTP API, plus the gRPC health service when configured,
// until ctx is cancelled or a listener fails.
func Run(ctx context.Context, cfg utils.Config, log *logger.Logger) error {
	db, err := OpenDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	deps, err := BuildDeps(cfg, db, log)
	if err != nil {
		return err
	}
	defer deps.Hub.CloseAll()

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP API server listening", "addr", cfg.HTTP.Addr, "remote_colleges", deps.Remote != nil)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	if cfg.GRPC.Addr != "" {
		g.Go(func() error {
			return grpcserver.New(db, log).Serve(gctx, cfg.GRPC.Addr)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	log.Info("servers stopped")
	return err
}
