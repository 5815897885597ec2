package main

import (
	"context"
	"fmt"

	"github.com/cpgs-hub/backend/core/identity"
)

// createAdmin creates an admin identity, or promotes and re-keys the existing one.
func (cli *commandLine) createAdmin(ctx context.Context, name, email, pwd string) error {
	usr, err := cli.usrSvc.EnsureAdmin(ctx, name, identity.PasswordChange{Email: email, Password: pwd})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin ready: %s <%s>\n", usr.Name, usr.Email)
	return nil
}
