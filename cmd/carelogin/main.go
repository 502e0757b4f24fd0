// Command carelogin logs in to the records API once and stores the issued
// token where carepanel reads it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/carepanel/internal/adapter/driven/healthapi"
	"github.com/ericfisherdev/carepanel/internal/adapter/driven/notify"
	sqliteadapter "github.com/ericfisherdev/carepanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/carepanel/internal/application"
	"github.com/ericfisherdev/carepanel/internal/config"
	"github.com/ericfisherdev/carepanel/internal/domain/model"
)

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run returns the process exit code: 0 when the login succeeded, 1 otherwise.
// The login outcome itself is reported on out, never as an error.
func run(args []string, out io.Writer) (int, error) {
	options := &Options{}
	if _, err := flags.ParseArgs(options, args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0, nil
		}
		return 1, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return 1, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return 1, err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return 1, err
	}

	apiClient, err := healthapi.NewClient(cfg.APIURL)
	if err != nil {
		return 1, err
	}
	tokenStore := sqliteadapter.NewTokenRepo(db)

	if options.Register {
		user, err := application.NewPatientService(apiClient, tokenStore).
			Register(ctx, options.Username, options.Password, options.role())
		if err != nil {
			fmt.Fprintln(out, registrationMessage(err))
			return 1, nil
		}
		fmt.Fprintf(out, "Registered %s as %s.\n", user.Username, user.Role)
	}

	authSvc := application.NewAuthService(apiClient, tokenStore, notify.NewWriter(out), slog.Default())
	if state := authSvc.Login(ctx, options.Username, options.Password); state != model.LoginStateSuccess {
		return 1, nil
	}
	return 0, nil
}

// registrationMessage words a failed registration the way login failures are
// worded.
func registrationMessage(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HasDetail() {
			return "Error: " + apiErr.Detail
		}
		return application.MsgLoginUnexpected
	}
	slog.Error("registration failed", "error", err)
	return "An error occurred during registration. Please try again."
}
