package ingest

import (
	"context"
	"log/slog"
	"sync"
)

// task states, logged but not exposed: completion is observable only through
// the collection's content.
const (
	taskQueued    = "queued"
	taskRunning   = "running"
	taskCompleted = "completed"
	taskFailed    = "failed"
)

type task struct {
	name string
	run  func(context.Context) error
}

// Queue executes submitted tasks one at a time on a background worker.
// Submission is fire and forget: there is no cancellation and a failure is
// terminal for that task only.
type Queue struct {
	tasks chan task
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewQueue starts the worker with room for buffer pending tasks.
func NewQueue(buffer int) *Queue {
	q := &Queue{tasks: make(chan task, buffer)}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for t := range q.tasks {
		slog.Info("task state", "task", t.name, "state", taskRunning)
		if err := t.run(context.Background()); err != nil {
			slog.Error("task state", "task", t.name, "state", taskFailed, "error", err)
			continue
		}
		slog.Info("task state", "task", t.name, "state", taskCompleted)
	}
}

// Submit enqueues a task. Returns false if the queue is already closed.
// Blocks when the buffer is full.
func (q *Queue) Submit(name string, run func(context.Context) error) bool {
	// The lock is held across the send so Close cannot close the channel
	// between the check and the send.
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}

	slog.Info("task state", "task", name, "state", taskQueued)
	q.tasks <- task{name: name, run: run}
	return true
}

// Close stops accepting tasks and waits for the pending ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.tasks)
	q.wg.Wait()
}
