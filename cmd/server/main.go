package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytdownloader/config"
	controllers "ytdownloader/controller"
	"ytdownloader/logger"
	"ytdownloader/progress"
	"ytdownloader/ratelimit"
	"ytdownloader/router"
	"ytdownloader/services"
	util "ytdownloader/utils"
	"ytdownloader/websocket"
	"ytdownloader/youtube"
	ytdlp "ytdownloader/yt-dlp"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "ytdl-server",
		Short:         "HTTP API that inspects YouTube videos and streams downloads",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", cfgFile, err)
				}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	config.SetDefaults(v)

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Path to a config file (yaml, toml or json)")
	flags.Int(config.KeyPort, 5000, "Port to listen on")
	flags.String(config.KeyFrontendURL, "http://localhost:5173", "Browser origin allowed by CORS")
	flags.String(config.KeyLogLevel, "info", "Log level (trace, debug, info, warn, error)")
	flags.Bool(config.KeyLogPretty, false, "Human readable console logs")
	flags.String("provider", config.ProviderYouTube, "Video provider (youtube or ytdlp)")
	flags.String("ytdlp-path", "yt-dlp", "yt-dlp executable used by the ytdlp provider")
	flags.String("content-type-policy", "legacy", "Download Content-Type: legacy (always video/mp4) or container")

	for key, flag := range map[string]string{
		config.KeyPort:              config.KeyPort,
		config.KeyFrontendURL:       config.KeyFrontendURL,
		config.KeyLogLevel:          config.KeyLogLevel,
		config.KeyLogPretty:         config.KeyLogPretty,
		config.KeyProvider:          "provider",
		config.KeyYTDLPPath:         "ytdlp-path",
		config.KeyContentTypePolicy: "content-type-policy",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	log := logger.Component("server")
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gate := util.NewGate(cfg.MaxConcurrent)

	var provider services.Provider
	switch cfg.Provider {
	case config.ProviderYTDLP:
		provider = ytdlp.New(cfg.YTDLPPath, gate.Active)
	default:
		provider = youtube.New(&http.Client{})
	}

	info := services.NewInfoService(provider, cfg.FetchTimeout)
	if cfg.ProviderRate > 0 {
		info.WithThrottle(rate.NewLimiter(rate.Limit(cfg.ProviderRate), cfg.ProviderBurst))
	}
	ctl := &controllers.Controller{
		Info: info,
		Download: services.NewDownloadService(info, provider, services.DownloadOptions{
			OpenTimeout:       cfg.OpenTimeout,
			ContentTypePolicy: cfg.ContentTypePolicy,
		}),
		Hub:       progress.NewHub(),
		Gate:      gate,
		Upgrader:  websocket.NewUpgrader(cfg.FrontendURL),
		ChunkSize: cfg.ChunkSize,
		Version:   version,
	}

	limiter := ratelimit.New(cfg.RateRequests, cfg.RateWindow, time.Now)
	go func() {
		ticker := time.NewTicker(cfg.RateWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := limiter.Sweep(); n > 0 {
					log.Debug().Int("removed", n).Msg("rate limiter sweep")
				}
			}
		}
	}()

	engine, err := router.SetupRouter(ctl, limiter, cfg.TrustedProxies)
	if err != nil {
		return err
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(engine)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("provider", provider.Name()).Str("origin", cfg.FrontendURL).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
