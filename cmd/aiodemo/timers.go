package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tickloop/aio"
)

var timersCmd = &cobra.Command{
	Use:   "timers",
	Short: "Schedule timers in random order, watch them fire in deadline order",
	Args:  cobra.NoArgs,
	RunE:  runTimers,
}

func runTimers(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	n, err := count("timers.count", cfg.Timers.Count)
	if err != nil {
		return err
	}
	maxDelay, err := count("timers.max_delay_ms", cfg.Timers.MaxDelayMS)
	if err != nil {
		return err
	}

	loop := aio.New()
	wg := aio.NewWaitGroup(loop)
	wg.Add(n)

	type firing struct {
		id    int
		delay time.Duration
	}
	var fired []firing

	delays := make([]time.Duration, n)
	for i := range delays {
		delays[i] = time.Duration(rand.IntN(maxDelay)+1) * time.Millisecond
	}
	for i, d := range delays {
		loop.CallLater(d, func() {
			fired = append(fired, firing{id: i, delay: d})
			wg.Done()
		})
	}

	if _, err := loop.Run("timers", func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		return t.Suspend(wg.Wait()).Then(func(t *aio.Task, _ aio.Input) aio.Result {
			return t.Return(nil)
		})
	}); err != nil {
		return err
	}

	bold := color.New(color.Bold)
	for i, f := range fired {
		bold.Printf("#%d", i+1)
		fmt.Printf(" timer %d fired after %v\n", f.id, f.delay)
	}
	color.New(color.FgGreen).Printf("%d timers, scheduled shuffled, fired sorted\n", n)
	return nil
}
