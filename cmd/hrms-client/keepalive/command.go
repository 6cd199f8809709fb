package keepalive

import (
	"github.com/spf13/cobra"

	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"keepalive",
		"Keep the session alive",
		"Refresh the access token on every keepAlive.interval until the session can no longer be refreshed.",
		buildInfo,
		cmdutils.RunAsService,
		business.KeepAliveMain,
	)
}
