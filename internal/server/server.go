package server

import (
	"context"
	"fmt"
	"time"

	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/rs/zerolog"
	swaggerUI "github.com/tx7do/kratos-swagger-ui"

	"github.com/go-tangra/go-tangra-memdev/internal/config"
	"github.com/go-tangra/go-tangra-memdev/internal/store"
)

// Run starts the HTTP collector server and blocks until the context is
// cancelled.
func Run(ctx context.Context, cfg *config.Config, openApiData []byte, log zerolog.Logger) error {
	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	handler := NewHandler(db)

	httpSrv := kratoshttp.NewServer(
		kratoshttp.Address(cfg.HTTPListen),
		kratoshttp.Filter(AuthFilter(cfg.ApiSecret, cfg.ClientSecret)),
	)
	handler.RegisterRoutes(httpSrv)

	// Swagger UI (registered via HandlePrefix — bypasses the auth filter
	// only by the /docs carve-out in AuthFilter).
	if cfg.EnableSwagger && len(openApiData) > 0 {
		swaggerUI.RegisterSwaggerUIServerWithOption(
			httpSrv,
			swaggerUI.WithTitle("memdev Collector"),
			swaggerUI.WithMemoryData(openApiData, "yaml"),
		)
		log.Info().Str("url", "http://"+cfg.HTTPListen+"/docs/").Msg("Swagger UI enabled")
	}

	// Optional retention purge goroutine.
	if cfg.RetentionDays > 0 {
		go runPurgeLoop(ctx, db, cfg.RetentionDays, cfg.PurgeInterval, log)
		log.Info().
			Int("retention_days", cfg.RetentionDays).
			Dur("purge_interval", cfg.PurgeInterval).
			Msg("Retention purge enabled")
	}

	// Graceful shutdown when the caller cancels the context.
	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		_ = httpSrv.Stop(context.Background())
	}()

	log.Info().
		Str("listen", cfg.HTTPListen).
		Str("database", cfg.DatabasePath).
		Msg("Collector listening")

	return httpSrv.Start(ctx)
}

func runPurgeLoop(ctx context.Context, db *store.Store, retentionDays int, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			olderThan := time.Duration(retentionDays) * 24 * time.Hour
			n, err := db.Purge(ctx, olderThan)
			if err != nil {
				log.Error().Err(err).Msg("Purge failed")
			} else if n > 0 {
				log.Info().Int64("purged", n).Int("retention_days", retentionDays).Msg("Purged old snapshots")
			}
		}
	}
}
