package cmd

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/earthwall/earthwall/internal/composite"
	"github.com/earthwall/earthwall/internal/config"
	"github.com/earthwall/earthwall/internal/control"
	"github.com/earthwall/earthwall/internal/history"
	"github.com/earthwall/earthwall/internal/notify"
	"github.com/earthwall/earthwall/internal/refresh"
	"github.com/earthwall/earthwall/internal/wallpaper"
	"github.com/earthwall/earthwall/pkg/logger"
)

// reapEvery is how often the daemon re-runs the stale file reaper after
// the sweep at startup.
const reapEvery = 6 * time.Hour

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to the TOML configuration file",
	},
}

func daemon(ctx *cli.Context) error {
	l := logger.NewStandardLogger(log.New(os.Stderr, "earthwall: ", log.LstdFlags))
	defer l.Close()

	cfgPath := ctx.String("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("resolve config path: %v", err), 1)
		}
	}
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	token, err := config.Token()
	if err != nil {
		l.Warning("could not read API token from keyring: %v", err)
	}
	if token == "" {
		l.Warning("no API token found; run `earthwall token set` to enable refreshing")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// History store lives beside the config file.
	cfgDir, err := config.Dir()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	hist, err := history.Open(filepath.Join(cfgDir, "history.db"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer hist.Close()

	fs := afero.NewOsFs()
	wallDir := wallpaper.DefaultDir()

	// Sweep stale files now and every few hours; fully detached from the
	// refresh pipeline.
	reaper := wallpaper.NewReaper(fs, l)
	reaper.ReapAsync(wallDir, wallpaper.DefaultMaxAge)
	go func() {
		ticker := time.NewTicker(reapEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reaper.ReapAsync(wallDir, wallpaper.DefaultMaxAge)
			case <-runCtx.Done():
				return
			}
		}
	}()

	ui := wallpaper.StartRunner()
	defer ui.Close()

	applicator := wallpaper.NewApplicator(fs, wallDir, wallpaper.SystemDisplays(l), ui, l)
	fetcher := composite.NewClient(fileCfg.APIBaseURL(), l)
	notifier := notify.System()

	handlers := &refresh.Handlers{
		StatusHandler: func(msg string) {
			l.Info("status: %s", msg)
		},
		SuccessHandler: func(_ image.Image, at time.Time) {
			if fileCfg.ShouldNotifyOnSuccess() {
				if err := notifier.Notify("Earth wallpaper updated",
					"Composite fetched at "+at.Format(time.Kitchen)); err != nil {
					l.Warning("notification failed: %v", err)
				}
			}
		},
		ErrorHandler: func(err error) {
			if nerr := notifier.Notify("Earth wallpaper refresh failed", err.Error()); nerr != nil {
				l.Warning("notification failed: %v", nerr)
			}
		},
		CycleHandler: func(started time.Time, err error) {
			outcome, msg := history.OutcomeSuccess, "wallpaper updated"
			if err != nil {
				outcome, msg = history.OutcomeFailure, err.Error()
			}
			if rerr := hist.Record(started, outcome, msg); rerr != nil {
				l.Warning("could not record cycle history: %v", rerr)
			}
		},
	}

	sched := refresh.New(runCtx, fetcher, applicator, handlers, l)
	if err := sched.Configure(fileCfg.RefreshConfig(token)); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer sched.Stop()

	srv := control.NewServer(sched, hist, version, l)
	if err := srv.Listen(); err != nil {
		return cli.NewExitError(fmt.Sprintf("bind control endpoint (daemon already running?): %v", err), 1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		l.Info("shutting down")
		cancel()
	}()

	l.Info("earthwall daemon started")
	return srv.Serve(runCtx)
}
