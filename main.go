package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gokaycavdar/tickzero-landing/pkg/config"
	"github.com/gokaycavdar/tickzero-landing/pkg/engine"
	"github.com/gokaycavdar/tickzero-landing/pkg/geoip"
	"github.com/gokaycavdar/tickzero-landing/pkg/i18n"
	"github.com/gokaycavdar/tickzero-landing/pkg/locale"
	"github.com/gokaycavdar/tickzero-landing/pkg/logging"
	"github.com/gokaycavdar/tickzero-landing/pkg/models"
	"github.com/gokaycavdar/tickzero-landing/pkg/storage"
	"github.com/gokaycavdar/tickzero-landing/pkg/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "landing",
		Short:        "Landing page server with cookie consent and language detection",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newResolveCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the localized site and the consent API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.ListenAddr = addr
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides LANDING_LISTEN_ADDR)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	opts := []engine.Option{
		engine.WithBaseLanguage(cfg.BaseLanguage),
		engine.WithDismissDelay(cfg.DismissDelay),
		engine.WithLogger(logger),
	}

	if cfg.GeoIPCityDB != "" {
		geo, err := geoip.NewService(cfg.GeoIPCityDB)
		if err != nil {
			return err
		}
		defer geo.Close()
		opts = append(opts, engine.WithLanguageFallback(geo))
	}

	cookieOpts := storage.CookieOptions{
		MaxAge: cfg.CookieMaxAge,
		Secure: cfg.CookieSecure,
		Domain: cfg.CookieDomain,
	}

	var stores web.StoreFactory
	switch cfg.Storage {
	case config.BackendMemory:
		shared := storage.NewMemoryStore()
		shared.MaxKeys = cfg.MemoryMaxKeys
		stores = web.MemoryVisitorStores(cookieOpts, shared)
	case config.BackendRedis:
		client, err := storage.NewRedisClient(storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		stores = web.VisitorStores(cookieOpts, func(ctx context.Context, id string) storage.Store {
			return storage.NewRedisStore(ctx, client, id, cfg.RedisTTL)
		})
	default:
		stores = web.CookieStores(cookieOpts)
	}

	catalog, err := i18n.NewCatalog()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := web.NewServer(engine.New(opts...), catalog, stores, cfg.SiteDir, logger).Router(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr, "storage", cfg.Storage, "site", cfg.SiteDir)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newResolveCmd() *cobra.Command {
	var (
		path       string
		lang       string
		userAgent  string
		firstVisit bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the locale decision for a request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			kv := storage.NewMemoryStore()
			if !firstVisit {
				_ = kv.Set(models.KeyLanguageDetected, "true")
			}

			r := locale.NewResolver(kv, locale.WithBaseLanguage(cfg.BaseLanguage), locale.WithLogger(logger))
			action := r.Resolve(locale.Context{
				DeclaredLanguage: lang,
				UserAgent:        userAgent,
				CurrentPath:      path,
			}, nil)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "action:   %s\n", action.Kind)
			fmt.Fprintf(out, "language: %s\n", action.Language)
			if action.Target != "" {
				fmt.Fprintf(out, "target:   %s (navigate=%t)\n", action.Target, action.Navigated)
			}
			stored := kv.Snapshot()
			keys, _ := kv.Keys()
			for _, k := range keys {
				fmt.Fprintf(out, "stored:   %s=%s\n", k, stored[k])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "/", "current page path")
	cmd.Flags().StringVar(&lang, "lang", "", "declared browser language, e.g. it-IT")
	cmd.Flags().StringVar(&userAgent, "ua", "Mozilla/5.0", "user agent")
	cmd.Flags().BoolVar(&firstVisit, "first-visit", true, "treat the request as a first visit")
	return cmd
}
