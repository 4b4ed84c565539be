package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/cli/config"
	httpctrl "github.com/secmon-lab/guidebook/pkg/controller/http"
	"github.com/secmon-lab/guidebook/pkg/service/worker"
	"github.com/secmon-lab/guidebook/pkg/usecase"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var staticDir string
	var secureCookie bool
	var trustUserHeader bool
	var transcriptLimit int
	var sessionTTL time.Duration
	var sweepInterval time.Duration
	var geminiCfg config.Gemini
	var repoCfg config.Repository
	var videoCfg config.Video
	var catalogCfg config.Catalog
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("GUIDEBOOK_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory of a built frontend to serve at /",
			Sources:     cli.EnvVars("GUIDEBOOK_STATIC_DIR"),
			Destination: &staticDir,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Always mark the session cookie Secure (set behind a TLS terminating proxy)",
			Sources:     cli.EnvVars("GUIDEBOOK_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
		&cli.BoolFlag{
			Name:        "trust-user-header",
			Usage:       "Take the user id from the X-User-ID header (only behind an auth proxy that sets it)",
			Sources:     cli.EnvVars("GUIDEBOOK_TRUST_USER_HEADER"),
			Destination: &trustUserHeader,
		},
		&cli.IntFlag{
			Name:        "chat-transcript-limit",
			Usage:       "Exchanges replayed to the engine per chat message (0 replays all)",
			Sources:     cli.EnvVars("GUIDEBOOK_CHAT_TRANSCRIPT_LIMIT"),
			Destination: &transcriptLimit,
		},
		&cli.DurationFlag{
			Name:        "chat-session-ttl",
			Usage:       "Idle time after which chat transcripts are removed (0 keeps them)",
			Value:       30 * 24 * time.Hour,
			Sources:     cli.EnvVars("GUIDEBOOK_CHAT_SESSION_TTL"),
			Destination: &sessionTTL,
		},
		&cli.DurationFlag{
			Name:        "chat-sweep-interval",
			Usage:       "Interval between idle transcript sweeps",
			Value:       time.Hour,
			Sources:     cli.EnvVars("GUIDEBOOK_CHAT_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, videoCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			catalog, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load topic catalog")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(context.WithoutCancel(ctx)); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			client, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure generation engine")
			}
			if client == nil {
				logging.Default().Warn("Gemini project not configured, generation features are unavailable")
			} else {
				logging.Default().Info("Gemini engine enabled", "gemini", geminiCfg.LogAttrs())
			}

			ucOpts := []usecase.Option{
				usecase.WithTopicCatalog(catalog),
				usecase.WithChatOptions(usecase.WithTranscriptLimit(transcriptLimit)),
			}

			videoOpt, closeVideo, err := videoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure video summarization")
			}
			defer closeVideo()
			if videoOpt != nil {
				ucOpts = append(ucOpts, videoOpt)
				logging.Default().Info("Video summarization enabled", "video", videoCfg.LogAttrs())
			} else {
				logging.Default().Info("Video bucket not configured, video summarization is disabled")
			}

			uc := usecase.New(repo, client, ucOpts...)

			var sweeper *worker.ConversationSweeper
			if sessionTTL > 0 {
				sweeper = worker.NewConversationSweeper(repo, sessionTTL, sweepInterval)
				if err := sweeper.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start conversation sweeper")
				}
				defer sweeper.Stop()
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithSecureCookie(secureCookie),
				httpctrl.WithTrustUserHeader(trustUserHeader),
			}
			if staticDir != "" {
				httpOpts = append(httpOpts, httpctrl.WithStaticFS(os.DirFS(staticDir)))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
