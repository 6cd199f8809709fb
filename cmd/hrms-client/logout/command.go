package logout

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/internal/cmdutils"
	"github.com/workzen/hrms-client/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var cmd *cobra.Command

	cmd = cmdutils.CobraCommand(
		"logout",
		"Forget the stored session",
		"",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			return business.LogoutMain(ctx, cfg, cmd.OutOrStdout())
		},
	)

	return cmd
}
