package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shanebasham/artstore/auth"
	"github.com/shanebasham/artstore/catalog"
	"github.com/shanebasham/artstore/internal/config"
	"github.com/shanebasham/artstore/kvstore"
	"github.com/shanebasham/artstore/kvstore/memory"
	"github.com/shanebasham/artstore/kvstore/redisstore"
	"github.com/shanebasham/artstore/kvstore/sqlitestore"
	"github.com/shanebasham/artstore/mail"
	"github.com/shanebasham/artstore/server"
	"github.com/shanebasham/artstore/token"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "artstore",
		Short:        "Art gallery and print shop",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			setupLogging(config.New())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of environment variables to load")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.AddCommand(serve, newQuoteCmd(), newValidateCardCmd())
	root.RunE = serve.RunE

	return root
}

func setupLogging(c config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if c.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func run(ctx context.Context) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := config.New()
	displayAppname(c.GetAppName())

	deps, closers, err := buildDeps(ctx, c)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	handler, err := server.New(c, deps)
	if err != nil {
		return err
	}
	handler.StartBackground(ctx)

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	returnError = shutdown(httpServer)
	log.Info().Msg("Server stopped")
	return returnError
}

// buildDeps opens the stores and clients selected by the configuration. The
// returned closers must run even when err is non-nil.
func buildDeps(ctx context.Context, c config.Config) (server.Deps, []io.Closer, error) {
	var closers []io.Closer

	var durable kvstore.Store
	switch c.GetStoreBackend() {
	case config.StoreBackendRedis:
		store, err := redisstore.Dial(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetDurableTTL())
		if err != nil {
			return server.Deps{}, closers, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, store)
		durable = store
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Durable store: redis")
	default:
		store, err := sqlitestore.Open(c.GetSQLitePath())
		if err != nil {
			return server.Deps{}, closers, fmt.Errorf("open sqlite: %w", err)
		}
		closers = append(closers, store)
		durable = store
		log.Info().Str("path", c.GetSQLitePath()).Msg("Durable store: sqlite")
	}

	var authenticator auth.Authenticator
	if c.GetAuthMode() == config.AuthModeRemote {
		authenticator = auth.NewRemoteAuthenticator(auth.RemoteConfig{
			URL:     c.GetLoginAPIURL(),
			Timeout: c.GetLoginTimeout(),
		})
		log.Info().Str("url", c.GetLoginAPIURL()).Msg("Modal logins use the login API")
	}

	if !c.IsDev() && c.GetJWTSecret() == "dev-secret-change-me" {
		log.Warn().Msg("JWT_SECRET is not set; login API tokens use the development secret")
	}

	deps := server.Deps{
		Durable:       durable,
		Ephemeral:     memory.New(memory.WithTTL(c.GetEphemeralTTL())),
		Authenticator: authenticator,
		Relay:         mail.NewSMTPRelay(c.GetSmtpHost(), c.GetSmtpPort(), c.GetSmtpAccount(), c.GetSmtpPassword(), c.GetSmtpRecipient()),
		Issuer:        token.NewIssuer(token.NewHMACSigner(c.GetJWTSecret()), c.GetTokenExpiry()),
		APIUsers:      auth.ParseAPIUsers(c.GetAPIUsers()),
		CatalogFS:     catalog.SourceFS(c.GetDataFolder()),
	}
	imagesDir := filepath.Join(c.GetDataFolder(), "images")
	if info, err := os.Stat(imagesDir); err == nil && info.IsDir() {
		deps.ImagesFS = os.DirFS(imagesDir)
	}
	return deps, closers, nil
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			log.Err(err).Msg("Failed to close store")
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
