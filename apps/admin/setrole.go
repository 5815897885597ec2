package main

import (
	"context"
	"fmt"

	"github.com/cpgs-hub/backend/core/identity"
)

func (cli *commandLine) setRole(ctx context.Context, email, role string) error {
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	usr, err = cli.usrSvc.UpdateRole(ctx, identity.RoleUpdate{UserID: usr.ID, Role: role})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s is now %s\n", usr.Email, usr.Role)
	return nil
}
