package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/earthwall/earthwall/internal/wallpaper"
	"github.com/earthwall/earthwall/pkg/logger"
)

var reapFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "max-age, a",
		Usage: "delete files older than this many hours",
		Value: 24,
	},
}

func reapAction(ctx *cli.Context) error {
	l := logger.NewStandardLogger(log.New(os.Stderr, "earthwall: ", log.LstdFlags))
	defer l.Close()

	maxAge := time.Duration(ctx.Int("max-age")) * time.Hour
	reaper := wallpaper.NewReaper(afero.NewOsFs(), l)
	n := reaper.Reap(wallpaper.DefaultDir(), maxAge)
	fmt.Printf("deleted %d stale wallpaper file(s)\n", n)
	return nil
}
