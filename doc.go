// Package aio is a cooperative, single-threaded concurrency runtime.
//
// Go already excels at preemptive concurrency; this library deliberately
// gives it up. A [Loop] runs every callback, coroutine step and future
// completion on one goroutine, so code driven by a Loop never races with
// itself: between two suspension points, a [Coroutine] owns the world.
// One can create as many loops as they like.
//
// # Cooperative Scheduling
//
// A [Task] is spawned with a [Coroutine], a step function the loop calls
// whenever the task is runnable. In it, one returns a specific [Result] to
// suspend on an [Awaitable] (a [Future], another Task, a sleep or a
// primitive wait handle), to complete with a value, or to fail with an
// error. A suspended task consumes nothing until the thing it awaits
// resolves; a task that never suspends starves every other task, since
// nothing preempts it.
//
// # Determinism
//
// The loop makes scheduling order part of the contract. Callbacks run FIFO
// within a tick, completion callbacks are always dispatched through the
// ready queue rather than synchronously, and the primitives hand ownership
// to their longest waiter instead of letting a late acquirer barge in.
// Together with [VirtualClock], this makes runs reproducible: the same
// program observes the same interleaving every time.
//
// # Blocking Code
//
// It's not recommended to have channel operations or blocking calls in a
// [Coroutine]: if one coroutine blocks, no other coroutines can run.
// Blocking work belongs in a [Pool], which runs it on worker goroutines and
// delivers results back onto the loop through [Loop.CallSoonThreadsafe],
// the single point where other goroutines may talk to a running loop.
//
// # Cancellation
//
// Cancellation is a request, not a verdict. [Task.Cancel] arms a flag and
// forwards the request into whatever the task is suspended on; the
// coroutine observes [ErrCancelled] in its [Input] at the next resumption
// and decides whether to honor it. Raising ErrCancelled ends the task in
// the Cancelled state. A computation may observe the signal and keep going,
// but until its next suspension point it is unresponsive to everything,
// cancellation included.
//
// # Failure Hygiene
//
// Errors don't vanish. A failed [Future] nobody ever reads reports itself
// through the loop's exception handler when it is garbage collected, and a
// panic escaping a callback is routed there too instead of tearing the loop
// down. For joining whole groups of tasks, a [Scope] cancels the siblings
// of the first failure and surfaces the aggregate.
package aio
