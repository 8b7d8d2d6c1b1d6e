package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tickloop/aio"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Producers and a consumer over a bounded queue",
	Long: `Spawn N producers that each push M items into a bounded queue, with a
single consumer draining it. Everything runs on one goroutine; back
pressure comes from Put suspending while the queue is full.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	producers, err := count("pipeline.producers", cfg.Pipeline.Producers)
	if err != nil {
		return err
	}
	items, err := count("pipeline.items", cfg.Pipeline.Items)
	if err != nil {
		return err
	}
	queueSize, err := count("pipeline.queue_size", cfg.Pipeline.QueueSize)
	if err != nil {
		return err
	}

	loop := aio.New()
	q := aio.NewQueue(loop, queueSize)
	var consumed []string

	_, err = loop.Run("pipeline", func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(loop)
		for i := range producers {
			s.Spawn(fmt.Sprintf("producer-%d", i), produceInto(q, i, items))
		}
		s.Spawn("consumer", consumeFrom(q, producers*items, &consumed))
		return t.Suspend(s.Wait()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Suspend(q.Join()).Then(func(t *aio.Task, in aio.Input) aio.Result {
				if in.Err() != nil {
					return t.Raise(in.Err())
				}
				return t.Return(nil)
			})
		})
	})
	if err != nil {
		return err
	}

	for _, item := range consumed {
		fmt.Println(item)
	}
	color.New(color.FgGreen, color.Bold).Printf("consumed %d items through a queue of %d\n",
		len(consumed), queueSize)
	return nil
}

// produceInto pushes items named after the producer, suspending whenever the
// queue is full.
func produceInto(q *aio.Queue, id, items int) aio.Coroutine {
	next := 0
	return func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		if next == items {
			return t.Return(nil)
		}
		item := fmt.Sprintf("producer-%d item-%d", id, next)
		next++
		return t.Suspend(q.Put(item)).Reiterate()
	}
}

// consumeFrom drains total items, acknowledging each one.
func consumeFrom(q *aio.Queue, total int, out *[]string) aio.Coroutine {
	seen := 0
	return func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		if v := in.Value(); v != nil {
			*out = append(*out, v.(string))
			q.TaskDone()
			seen++
		}
		if seen == total {
			return t.Return(seen)
		}
		return t.Suspend(q.Get()).Reiterate()
	}
}
