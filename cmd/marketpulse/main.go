package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/marketpulse/pkg/api"
	"github.com/umputun/marketpulse/pkg/config"
	"github.com/umputun/marketpulse/pkg/dashboard"
	"github.com/umputun/marketpulse/pkg/domain"
	"github.com/umputun/marketpulse/pkg/feed"
	"github.com/umputun/marketpulse/pkg/repository"
	"github.com/umputun/marketpulse/pkg/scheduler"
	"github.com/umputun/marketpulse/server"
)

// Opts with all CLI options
type Opts struct {
	Server    ServerCmd    `command:"server" description:"run the data and vote authority"`
	Dashboard DashboardCmd `command:"dashboard" description:"load the dashboard from an authority and optionally vote"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

// ServerCmd runs the authority
type ServerCmd struct {
	Config   string `short:"c" long:"config" env:"CONFIG" default:"marketpulse.yml" description:"configuration file"`
	KeepNews int    `long:"keep-news" env:"KEEP_NEWS" default:"500" description:"news items retained after each update, 0 keeps all"`
}

// DashboardCmd loads the dashboard once, applies an optional vote and prints the result
type DashboardCmd struct {
	URL     string        `short:"u" long:"url" env:"MP_URL" default:"http://localhost:8080" description:"authority url"`
	Token   string        `short:"t" long:"token" env:"MP_TOKEN" description:"bearer token"`
	Timeout time.Duration `long:"timeout" env:"MP_TIMEOUT" default:"15s" description:"request timeout"`
	ID      string        `long:"id" description:"item id to vote for"`
	Vote    string        `long:"vote" choice:"like" choice:"dislike" choice:"clear" description:"vote to apply to --id"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}
	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	color.NoColor = color.NoColor || opts.NoColor
	SetupLog(opts.Debug, opts.Dashboard.Token)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	var err error
	switch parser.Active.Name {
	case "server":
		lgr.Printf("[INFO] starting marketpulse version %s", revision)
		err = runServer(ctx, opts.Server, opts.Debug)
	case "dashboard":
		err = runDashboard(ctx, opts.Dashboard, os.Stdout)
	}
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %s failed: %v", parser.Active.Name, err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runServer starts the authority with news ingestion and blocks until ctx is canceled
func runServer(ctx context.Context, opts ServerCmd, debug bool) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	if err := seedItems(ctx, repos.Item, cfg.Seed); err != nil {
		return fmt.Errorf("failed to seed items: %w", err)
	}

	sched := scheduler.NewScheduler(scheduler.Params{
		Fetcher:        feed.NewFetcher(cfg.Schedule.FetchTimeout, "marketpulse/"+revision),
		Store:          repos.Item,
		Feeds:          cfg.GetFeeds(),
		UpdateInterval: cfg.Schedule.UpdateInterval,
		MaxWorkers:     cfg.Schedule.MaxWorkers,
		KeepNews:       opts.KeepNews,
	})
	sched.Start(ctx)
	defer sched.Stop()

	if len(cfg.Users()) == 0 {
		lgr.Printf("[WARN] no auth tokens configured, all votes are anonymous")
	}

	srv := server.New(cfg, repos.Item, repos.Vote, sched, revision, debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	lgr.Print("[INFO] shutdown complete")
	return nil
}

// runDashboard loads all collections, applies the requested vote and prints the dashboard.
// The dashboard error, if any, is returned after printing.
func runDashboard(ctx context.Context, opts DashboardCmd, out io.Writer) error {
	if (opts.ID == "") != (opts.Vote == "") {
		return errors.New("--id and --vote must be used together")
	}

	client := api.New(api.Opts{
		BaseURL: opts.URL,
		Token:   opts.Token,
		Timeout: opts.Timeout,
		OnUnauthorized: func() {
			lgr.Printf("[WARN] token rejected by %s", opts.URL)
		},
	})
	board := dashboard.New(client, dashboard.Opts{})
	defer board.Close()

	board.Load(ctx)

	if opts.ID != "" {
		item, ok := board.Find(opts.ID)
		if !ok {
			printDashboard(out, board.State())
			return fmt.Errorf("item %q is not on the dashboard", opts.ID)
		}
		board.ApplyVote(ctx, item, domain.Vote(opts.Vote))
	}

	state := board.State()
	printDashboard(out, state)
	if state.Error != "" {
		return errors.New(state.Error)
	}
	return nil
}

// SetupLog configures lgr, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
