package request

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/internal/cmdutils"
	"github.com/workzen/hrms-client/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var (
		in  business.RequestInput
		cmd *cobra.Command
	)

	cmd = cmdutils.CobraCommand(
		"request [METHOD] PATH",
		"Send an authenticated request",
		"Send a request to the HRMS API with the stored session and print the response body. "+
			"PATH is relative to api.baseURL, e.g. /attendance/attendance/my_attendance/.",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			return business.RequestMain(ctx, cfg, in, cmd.OutOrStdout())
		},
	)

	cmd.Args = cobra.RangeArgs(1, 2)
	cmd.Flags().StringArrayVarP(&in.Query, "query", "q", nil, "query parameter as key=value, repeatable")
	cmd.Flags().StringArrayVarP(&in.Header, "header", "H", nil, "header as key:value, repeatable")
	cmd.Flags().StringVarP(&in.Body, "data", "d", "", "JSON request body")

	cmd.PreRunE = func(_ *cobra.Command, args []string) error {
		in.Method, in.Path = parseArgs(args)
		return nil
	}

	return cmd
}

func parseArgs(args []string) (method, path string) {
	if len(args) == 1 {
		return http.MethodGet, args[0]
	}

	return args[0], args[1]
}
