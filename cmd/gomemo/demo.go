package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"gomemo/internal/memo"
)

func (a *app) squares(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.settings(cmd, "squares")
	if err != nil {
		return err
	}
	cfg.Mode = memo.Synchronous

	var invocations atomic.Int64
	m := memo.New(memo.Infallible(func(x int) int {
		invocations.Add(1)
		return x * x
	}), memo.ByArgument[int], cfg)
	defer m.Close()

	n := int(cmd.Int("n"))
	for pass := 1; pass <= 2; pass++ {
		for x := 1; x <= n; x++ {
			res, err := m.CallDebug(x)
			if err != nil {
				return err
			}
			printResult(cmd, fmt.Sprintf("%s pass: %d*%d", humanize.Ordinal(pass), x, x), res)
		}
	}
	fmt.Printf("producer invocations: %s for %s calls\n",
		humanize.Comma(invocations.Load()), humanize.Comma(int64(2*n)))
	return nil
}

func (a *app) coalesce(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.settings(cmd, "coalesce")
	if err != nil {
		return err
	}
	cfg.Mode = memo.Coalescing

	delay := cmd.Duration("delay")
	var invocations atomic.Int64
	m := memo.New(func(key string) (string, error) {
		n := invocations.Add(1)
		wait := time.NewTimer(delay)
		defer wait.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-wait.C:
		}
		return fmt.Sprintf("%s#%d", key, n), nil
	}, memo.ByArgument[string], cfg)
	defer m.Close()

	callers := int(cmd.Int("callers"))
	results := make([]memo.Result[string], callers)
	started := time.Now()

	var g errgroup.Group
	for i := range callers {
		g.Go(func() (err error) {
			results[i], err = m.CallDebug("report")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		printResult(cmd, humanize.Ordinal(i+1)+" caller", res)
	}
	fmt.Printf("producer invocations: %s for %s callers in %s\n",
		humanize.Comma(invocations.Load()), humanize.Comma(int64(callers)), time.Since(started).Round(time.Millisecond))
	return nil
}

func (a *app) expire(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.settings(cmd, "expire")
	if err != nil {
		return err
	}

	m := memo.New(memo.Infallible(func(string) string {
		return time.Now().Format(time.StampMilli)
	}), memo.ByArgument[string], cfg)
	defer m.Close()

	call := func(label string) error {
		res, err := m.CallDebug("now")
		if err != nil {
			return err
		}
		printResult(cmd, label, res)
		return nil
	}

	if err := call("first call"); err != nil {
		return err
	}
	if err := call("second call"); err != nil {
		return err
	}

	// Wait long enough for the entry's timer to fire.
	wait := time.NewTimer(cfg.TTL + 50*time.Millisecond)
	defer wait.Stop()
	select {
	case <-ctx.Done():
		fmt.Println("received shutdown signal")
		return nil
	case <-wait.C:
	}

	fmt.Printf("entries after %s: %d\n", cfg.TTL, m.Len())
	return call("after expiry")
}

func printResult[R any](cmd *cli.Command, label string, res memo.Result[R]) {
	if cmd.Bool("debug") {
		fmt.Printf("%s = %v (cached=%t)\n", label, res.Value, res.Cached)
		return
	}
	fmt.Printf("%s = %v\n", label, res.Value)
}
