package workers

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
)

// ErrStopped is returned when dispatching to a stopped pool.
var ErrStopped = errors.New("worker pool stopped")

type Task struct {
	Key string
	Fn  func()
}

// WorkerPool runs tasks on a fixed set of goroutines. Tasks sharing a key
// always land on the same worker and therefore run in dispatch order.
type WorkerPool struct {
	NumWorkers int
	queues     []chan Task

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewWorkerPool(n, queueSize int) *WorkerPool {
	if n <= 0 {
		n = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	wp := &WorkerPool{
		NumWorkers: n,
		queues:     make([]chan Task, n),
	}

	for i := 0; i < n; i++ {
		ch := make(chan Task, queueSize)
		wp.queues[i] = ch

		wp.wg.Add(1)
		go func(id int, q chan Task) {
			defer wp.wg.Done()
			for task := range q {
				wp.run(id, task)
			}
		}(i, ch)
	}

	return wp
}

func (wp *WorkerPool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Int("worker", id).
				Str("key", task.Key).
				Interface("panic", r).
				Msg("task panicked")
		}
	}()
	task.Fn()
}

// Dispatch queues fn on the worker owning key, blocking while that queue is full.
func (wp *WorkerPool) Dispatch(key string, fn func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return ErrStopped
	}
	wp.queues[wp.workerFor(key)] <- Task{Key: key, Fn: fn}
	return nil
}

// TryDispatch queues fn without blocking. It reports false when the pool is
// stopped or the worker's queue is full.
func (wp *WorkerPool) TryDispatch(key string, fn func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return false
	}
	select {
	case wp.queues[wp.workerFor(key)] <- Task{Key: key, Fn: fn}:
		return true
	default:
		return false
	}
}

// Stop drains queued tasks and waits for the workers to exit.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	for _, q := range wp.queues {
		close(q)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}

func (wp *WorkerPool) workerFor(key string) int {
	return int(HashString(key) % uint32(wp.NumWorkers))
}

// HashString is 32-bit FNV-1a.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
