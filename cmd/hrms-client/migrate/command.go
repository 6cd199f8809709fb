package migrate

import (
	"github.com/spf13/cobra"

	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Migrate the postgres session store",
		"",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
