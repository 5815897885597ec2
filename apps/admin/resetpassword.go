package main

import (
	"context"

	"github.com/cpgs-hub/backend/core/identity"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	return cli.usrSvc.SetPassword(ctx, identity.PasswordChange{Email: email, Password: pwd})
}
