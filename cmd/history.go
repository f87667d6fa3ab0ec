package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"github.com/earthwall/earthwall/internal/config"
	"github.com/earthwall/earthwall/internal/history"
)

var historyFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "limit, n",
		Usage: "maximum number of cycles to show",
		Value: 20,
	},
}

func historyAction(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	// Prefer the daemon's view; fall back to reading the store directly
	// when no daemon is running.
	if client, err := dialDaemon(); err == nil {
		defer client.Close()
		cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		res, err := client.History(cctx, limit)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		for _, c := range res.Cycles {
			printCycle(c.StartedAt, c.Outcome, c.Message)
		}
		return nil
	}

	cfgDir, err := config.Dir()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	store, err := history.Open(filepath.Join(cfgDir, "history.db"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer store.Close()

	cycles, err := store.Recent(limit)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	for _, c := range cycles {
		printCycle(c.StartedAt, c.Outcome, c.Message)
	}
	return nil
}

func printCycle(at time.Time, outcome, message string) {
	fmt.Printf("%s  %-7s  %s\n", at.Local().Format("2006-01-02 15:04:05"), outcome, message)
}
