package main

import "context"

// runMigration forwards a goose command, eg: `migrate up-to 2`.
func (cli *commandLine) runMigration(ctx context.Context, args []string) error {
	return cli.migrate(ctx, args[0], args[1:]...)
}
