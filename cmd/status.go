package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/earthwall/earthwall/internal/control"
)

// dialDaemon connects to the local daemon's control endpoint.
func dialDaemon() (*control.Client, error) {
	return control.Dial()
}

func statusAction(_ *cli.Context) error {
	client, err := dialDaemon()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := client.Status(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	fmt.Println("state:       ", res.State)
	if res.LastSuccess != nil {
		fmt.Println("last success:", res.LastSuccess.Local().Format(time.RFC1123))
	} else {
		fmt.Println("last success: never")
	}
	if res.NextFire != nil {
		fmt.Println("next refresh:", res.NextFire.Local().Format(time.RFC1123))
	} else {
		fmt.Println("next refresh: not scheduled")
	}
	if res.LastMessage != "" {
		fmt.Println("message:     ", res.LastMessage)
	}
	return nil
}
