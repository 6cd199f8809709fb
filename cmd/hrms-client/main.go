package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/workzen/hrms-client/cmd/hrms-client/keepalive"
	"github.com/workzen/hrms-client/cmd/hrms-client/login"
	"github.com/workzen/hrms-client/cmd/hrms-client/logout"
	"github.com/workzen/hrms-client/cmd/hrms-client/migrate"
	"github.com/workzen/hrms-client/cmd/hrms-client/request"
	"github.com/workzen/hrms-client/cmd/hrms-client/whoami"
	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/pkg/apiclient"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"

	gracefulShutdown time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "HRMS Client Version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hrms-client",
		Short:         "WorkZen HRMS Client",
		Long:          "WorkZen HRMS command line client, keeping an authenticated session to the HRMS API.",
		SilenceErrors: true,
	}

	cmd.PersistentFlags().DurationVar(&gracefulShutdown, "graceful-shutdown", 0, "graceful shutdown")

	cmd.AddCommand(
		versionCmd,
		login.Cmd(BuildInfo),
		logout.Cmd(BuildInfo),
		whoami.Cmd(BuildInfo),
		request.Cmd(BuildInfo),
		keepalive.Cmd(BuildInfo),
		migrate.Cmd(BuildInfo),
	)

	return cmd
}

// errorHint tells the user how to recover from a lost session.
func errorHint(err error) string {
	switch {
	case errors.Is(err, apiclient.ErrAuthExpired):
		return "session expired, run `hrms-client login`"
	case errors.Is(err, business.ErrNotLoggedIn):
		return "not logged in, run `hrms-client login`"
	default:
		return ""
	}
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Debug(ctx, "command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		if hint := errorHint(err); hint != "" {
			_, _ = fmt.Fprintln(os.Stderr, hint)
		}

		return err
	}

	if gracefulShutdown > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Graceful shutdown in %s\n", gracefulShutdown)
		time.Sleep(gracefulShutdown)
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
