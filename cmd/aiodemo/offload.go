package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tickloop/aio"
	"github.com/tickloop/aio/observe/prom"
)

var offloadCmd = &cobra.Command{
	Use:   "offload",
	Short: "Offload blocking calls to a worker pool",
	Long: `Submit blocking calls to a bounded worker pool and await their results
from coroutines. Loop metrics are collected with a Prometheus observer and
printed at the end.`,
	Args: cobra.NoArgs,
	RunE: runOffload,
}

func runOffload(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	workers, err := count("offload.workers", cfg.Offload.Workers)
	if err != nil {
		return err
	}
	calls, err := count("offload.calls", cfg.Offload.Calls)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	loop := aio.New(aio.WithObserver(prom.New(registry)))
	pool := aio.NewPool(loop, workers)

	var sum int
	_, err = loop.Run("offload", func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(loop)
		for i := range calls {
			s.Spawn(fmt.Sprintf("call-%d", i), awaitSquare(pool, i, &sum))
		}
		return t.Suspend(s.Wait()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Return(nil)
		})
	})
	pool.Close()
	if err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Printf("sum of %d squares: %d\n", calls, sum)
	return printCounters(registry)
}

// awaitSquare offloads a slow squaring call and folds the result into sum.
func awaitSquare(pool *aio.Pool, i int, sum *int) aio.Coroutine {
	return func(t *aio.Task, _ aio.Input) aio.Result {
		f := pool.Submit(func() (any, error) {
			time.Sleep(time.Duration(rand.IntN(20)+1) * time.Millisecond)
			return i * i, nil
		})
		return t.Suspend(f).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			*sum += in.Value().(int)
			return t.Return(nil)
		})
	}
}

func printCounters(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				bold.Printf("%s", fam.GetName())
				fmt.Printf(" = %.0f\n", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				bold.Printf("%s", fam.GetName())
				fmt.Printf(" count=%d sum=%.6fs\n",
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
	return nil
}
