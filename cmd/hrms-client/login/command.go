package login

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workzen/hrms-client/internal/business"
	"github.com/workzen/hrms-client/internal/cmdutils"
	"github.com/workzen/hrms-client/internal/config"
)

func Cmd(buildInfo string) *cobra.Command {
	var (
		in            business.LoginInput
		passwordStdin bool
		cmd           *cobra.Command
	)

	cmd = cmdutils.CobraCommand(
		"login",
		"Log in to the HRMS API",
		"Log in with email and password and store the issued access and refresh tokens in the session store.",
		buildInfo,
		cmdutils.RunAsJob,
		func(ctx context.Context, cfg *config.Config) error {
			return business.LoginMain(ctx, cfg, in, cmd.OutOrStdout())
		},
	)

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	_ = cmd.MarkFlagRequired("email")

	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if !passwordStdin {
			return nil
		}

		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		in.Password = password
		return nil
	}

	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}

	return password, nil
}
