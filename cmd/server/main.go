package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/noauthlabs/noauth-server/auth"
	"github.com/noauthlabs/noauth-server/bootstrap"
	"github.com/noauthlabs/noauth-server/internal/config"
	"github.com/noauthlabs/noauth-server/providers/facebook"
	"github.com/noauthlabs/noauth-server/providers/google"
	"github.com/noauthlabs/noauth-server/server"
	"github.com/noauthlabs/noauth-server/store/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	store := memory.New()
	if err := seed(store); err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}

	options := []auth.ServiceOption{
		auth.WithAccessTokenTTL(c.GetAccessTokenExpiry()),
		auth.WithRefreshTokenTTL(c.GetRefreshTokenExpiry()),
		auth.WithProviderTimeout(c.GetProviderTimeout()),
		auth.WithProvider(facebook.New()),
	}
	if googleClientID := c.GetGoogleClientID(); googleClientID != "" {
		options = append(options, auth.WithProvider(google.New(googleClientID)))
	}

	authService, err := auth.NewService(auth.Repos{
		Projects: store.Projects(),
		Clients:  store.Clients(),
		Users:    store.Users(),
		Scopes:   store.Scopes(),
		Sessions: store.Sessions(),
	}, options...)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, authService)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

// seed loads the declarative project/client/scope config from the file
// named by SEED_CONFIG. Without it the server starts empty.
func seed(store *memory.Store) error {
	path := config.GetEnv("SEED_CONFIG", "")
	if path == "" {
		log.Warn().Msg("SEED_CONFIG not set, starting with an empty store")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var seedConfig bootstrap.Config
	if err := json.Unmarshal(data, &seedConfig); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	return bootstrap.Initialize(context.Background(), bootstrap.Repos{
		Projects: store.Projects(),
		Clients:  store.Clients(),
		Scopes:   store.Scopes(),
	}, seedConfig)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
