package whoami

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/internal/cmdutils"
	"github.com/workzen/hrms-client/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var (
		in  business.WhoAmIInput
		cmd *cobra.Command
	)

	cmd = cmdutils.CobraCommand(
		"whoami",
		"Show the logged-in user",
		"Show the profile stored at login, or with --remote the profile returned by the API.",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			return business.WhoAmIMain(ctx, cfg, in, cmd.OutOrStdout())
		},
	)

	cmd.Flags().BoolVar(&in.Remote, "remote", false, "fetch the profile from the API")

	return cmd
}
