package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stock-journal/config"
	"stock-journal/handlers"
	"stock-journal/report"
	"stock-journal/session"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd, cfg)
		},
	}
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set in the environment")
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeDB, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	var (
		registry session.Registry = session.NewMemoryStore()
		cache    report.Cache     = report.NewMemoryCache()
	)
	rdb, err := config.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		registry = session.NewRedisStore(rdb)
		cache = report.NewRedisCache(rdb, cfg.ReportCacheTTL)
	} else {
		log.Warn("REDIS_ADDR not set, keeping sessions and report cache in memory")
	}

	h := handlers.New(handlers.Deps{
		Store:        store,
		Reports:      report.NewService(store, cache),
		Sessions:     session.NewManager(cfg.JWTSecret, cfg.SessionTTL, registry),
		SecureCookie: cfg.CookieSecure,
	})
	router, err := h.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": srv.Addr}).Info("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
