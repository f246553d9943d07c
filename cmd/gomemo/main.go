package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"gomemo/internal/config"
	mylog "gomemo/internal/log"
	"gomemo/internal/memo"
	"gomemo/internal/metrics"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	// Signal-aware context is the root of ownership for the demos' waits.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// app carries the state shared by every subcommand.
type app struct {
	registry   *prometheus.Registry
	collectors *metrics.Collectors
}

func newApp() *cli.Command {
	a := &app{registry: prometheus.NewRegistry()}
	a.collectors = metrics.NewCollectors(a.registry)

	return &cli.Command{
		Name:  "gomemo",
		Usage: "demonstrate memoized producers with TTL expiry and call coalescing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML profile with ttl, mode, sliding and forget_failures",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("GOMEMO_CONFIG"),
				),
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "lifetime of a cached result",
				Value: memo.DefaultTTL,
			},
			&cli.BoolFlag{
				Name:  "sliding",
				Usage: "extend an entry's lifetime on every hit",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "print whether each result was served from cache",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print cache counters after the demo",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "squares",
				Usage:  "memoize x*x synchronously over 1..n, twice",
				Flags:  []cli.Flag{&cli.IntFlag{Name: "n", Value: 5, Usage: "largest input"}},
				Action: a.squares,
			},
			{
				Name:  "coalesce",
				Usage: "run concurrent callers against one slow producer",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "callers", Value: 8, Usage: "number of concurrent callers"},
					&cli.DurationFlag{Name: "delay", Value: memo.DefaultTTL / 2, Usage: "producer latency"},
				},
				Action: a.coalesce,
			},
			{
				Name:   "expire",
				Usage:  "populate a key, wait past its TTL and call again",
				Action: a.expire,
			},
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("metrics") {
				return a.printMetrics()
			}
			return nil
		},
	}
}

// settings merges the YAML profile with flags set on the command line.
func (a *app) settings(cmd *cli.Command, name string) (memo.Config, error) {
	profile, err := config.Load(cmd.String("config"))
	if err != nil {
		return memo.Config{}, err
	}
	cfg := profile.MemoConfig()
	if cmd.IsSet("ttl") || cfg.TTL <= 0 {
		cfg.TTL = cmd.Duration("ttl")
	}
	if cmd.IsSet("sliding") {
		cfg.Sliding = cmd.Bool("sliding")
	}
	cfg.Metrics = a.collectors.For(name)
	cfg.Logger = log.WithField("memo", name)

	log.WithFields(log.Fields{
		"memo":    name,
		"ttl":     cfg.TTL,
		"sliding": cfg.Sliding,
	}).Info("config")
	return cfg, nil
}

func (a *app) printMetrics() error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
