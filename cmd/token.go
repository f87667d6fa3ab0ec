package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/earthwall/earthwall/internal/config"
)

func tokenSet(ctx *cli.Context) error {
	token := ctx.Args().First()
	if token == "" {
		return cli.NewExitError("usage: earthwall token set <token>", 1)
	}
	if err := config.SetToken(token); err != nil {
		return cli.NewExitError(fmt.Sprintf("store token: %v", err), 1)
	}
	fmt.Println("token stored; restart the daemon (or wait for the next cycle) to pick it up")
	return nil
}

func tokenClear(_ *cli.Context) error {
	if err := config.ClearToken(); err != nil {
		return cli.NewExitError(fmt.Sprintf("clear token: %v", err), 1)
	}
	fmt.Println("token cleared")
	return nil
}
