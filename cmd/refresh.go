package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli"
)

func refreshAction(_ *cli.Context) error {
	client, err := dialDaemon()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := client.Refresh(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Println(res.Message)
	return nil
}
