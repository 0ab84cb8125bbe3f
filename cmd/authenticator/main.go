// Command authenticator keeps labelled third-party TOTP secrets in a JSON file
// and prints their current codes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shandysiswandi/authbite/internal/authenticator"
	"github.com/shandysiswandi/authbite/internal/authenticator/inbound"
	"github.com/shandysiswandi/authbite/internal/pkg/clock"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/shandysiswandi/authbite/internal/pkg/validator"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := pflag.NewFlagSet("authenticator", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	dataPath := fs.String("data", envOr("AUTHBITE_MODULES_AUTHENTICATOR_FILE_PATH", "data/secrets.json"), "path of the secrets file")
	verbose := fs.BoolP("verbose", "v", false, "log store activity to stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, inbound.ErrUsage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	val, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validator", "error", err)
		return 1
	}

	uc, err := authenticator.New(ctx, authenticator.Dependency{
		Fs:         afero.NewOsFs(),
		Path:       *dataPath,
		Instrument: instrument.NewNoop(),
		UUID:       uid.NewUUID(),
		Clock:      clock.New(),
		Validator:  val,
	})
	if err != nil {
		slog.Error("failed to open secrets file", "path", *dataPath, "error", err)
		return 1
	}

	cli := inbound.NewCLI(uc, os.Stdin, os.Stdout, os.Stderr)
	if err := cli.Run(ctx, fs.Args()); err != nil {
		if errors.Is(err, inbound.ErrUsage) {
			fmt.Fprintln(os.Stderr, inbound.ErrUsage)
			return 2
		}
		fmt.Fprintf(os.Stderr, "authenticator: %s\n", inbound.FormatError(err))
		return 1
	}

	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
