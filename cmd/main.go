// Package cmd wires the earthwall CLI: the daemon that runs the refresh
// pipeline, and the thin client commands that talk to it.
package cmd

import (
	"github.com/urfave/cli"
)

// Execute runs the earthwall CLI with the given arguments.
func Execute(args []string) error {
	app := cli.App{
		Name:      "earthwall",
		HelpName:  "earthwall",
		Usage:     "Live Earth day/night composite as your desktop wallpaper.",
		Version:   version,
		UsageText: "earthwall <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "run the wallpaper refresh daemon",
				Action: daemon,
				Flags:  daemonFlags,
			},
			{
				Name:    "refresh",
				Aliases: []string{"r"},
				Usage:   "trigger an immediate wallpaper refresh",
				Action:  refreshAction,
			},
			{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "show scheduler state and next refresh time",
				Action:  statusAction,
			},
			{
				Name:    "history",
				Aliases: []string{"l"},
				Usage:   "list recent refresh cycles",
				Action:  historyAction,
				Flags:   historyFlags,
			},
			{
				Name:   "reap",
				Usage:  "delete stale wallpaper files from the managed directory",
				Action: reapAction,
				Flags:  reapFlags,
			},
			{
				Name:  "token",
				Usage: "manage the composite API token",
				Subcommands: []cli.Command{
					{
						Name:      "set",
						Usage:     "store the API token in the OS keyring",
						ArgsUsage: "<token>",
						Action:    tokenSet,
					},
					{
						Name:   "clear",
						Usage:  "remove the API token from the OS keyring",
						Action: tokenClear,
					},
				},
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print the installed earthwall version",
				Action:  versionAction,
			},
		},
		UseShortOptionHandling: true,
	}
	return app.Run(args)
}
