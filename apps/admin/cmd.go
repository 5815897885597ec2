package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cpgs-hub/backend/core/identity"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc  identity.Service
	migrate func(ctx context.Context, command string, args ...string) error
	out     io.Writer
}

// run executes args, os.Args style (program name first).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCommand()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (cli *commandLine) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "CPGS Hub administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	createAdmin := &cobra.Command{
		Use:   "createadmin",
		Short: "Create an admin account, or promote an existing one. The password is prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.createAdmin(cmd.Context(), name, email, pwd)
		},
	}
	createAdmin.Flags().String("name", "", "display name")
	createAdmin.Flags().String("email", "", "account email")
	_ = createAdmin.MarkFlagRequired("email")

	setRole := &cobra.Command{
		Use:   "setrole",
		Short: "Change the role of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")
			return cli.setRole(cmd.Context(), email, role)
		},
	}
	setRole.Flags().String("email", "", "account email")
	setRole.Flags().String("role", "", fmt.Sprintf("one of %v", identity.AllRoles))
	_ = setRole.MarkFlagRequired("email")
	_ = setRole.MarkFlagRequired("role")

	resetPassword := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset the password of an account. The password is prompted next.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			pwd, err := cli.promptPassword(cmd)
			if err != nil {
				return err
			}
			return cli.resetPassword(cmd.Context(), email, pwd)
		},
	}
	resetPassword.Flags().String("email", "", "account email")
	_ = resetPassword.MarkFlagRequired("email")

	migrate := &cobra.Command{
		Use:                "migrate COMMAND [ARGS]",
		Short:              "Run a goose migration command (postgres only): up, up-by-one, up-to, down, down-to, redo, reset, status, version",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return cli.runMigration(cmd.Context(), args)
		},
	}

	root.AddCommand(createAdmin, setRole, resetPassword, migrate)
	return root
}

func (cli *commandLine) promptPassword(cmd *cobra.Command) (string, error) {
	cmd.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cmd.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}
