package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/rxadmin/internal/config"
	fakeorderrepo "github.com/jrsteele09/rxadmin/orders/repofake"
	"github.com/jrsteele09/rxadmin/server"
	tenantrepofakes "github.com/jrsteele09/rxadmin/tenants/repofakes"
	fakerefreshrepo "github.com/jrsteele09/rxadmin/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/rxadmin/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const revokedSessionSweep = 10 * time.Minute

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running mock API")
	}
	log.Info().Msg("Mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if level, err := zerolog.ParseLevel(c.GetLogLevel()); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	displayAppname(c.GetAppName() + " mock api")

	handler, err := server.New(c, server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Tenants:       tenantrepofakes.NewFakeTenantRepo(),
		Orders:        fakeorderrepo.NewFakeOrderRepo(),
		RefreshTokens: fakerefreshrepo.NewFakeRefreshTokenRepo(),
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv, c.GetBasePath())
	}()
	go sweepRevokedSessions(ctx, handler)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server, basePath string) error {
	log.Info().Str("addr", srv.Addr).Str("basePath", basePath).Msg("Mock API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// sweepRevokedSessions drops revocations whose access tokens have expired anyway.
func sweepRevokedSessions(ctx context.Context, s *server.Server) {
	ticker := time.NewTicker(revokedSessionSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tokens().CleanupRevokedSessions()
		}
	}
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
