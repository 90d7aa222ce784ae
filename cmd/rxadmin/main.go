package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/rxadmin/internal/cli"
	"github.com/jrsteele09/rxadmin/internal/console"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, cli.Options{
		Console: console.Run,
		Version: version,
	})
	stop()
	if err != nil {
		os.Exit(1)
	}
}
