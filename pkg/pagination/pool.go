package pagination

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrWorkerPanic marks a slot whose unit of work panicked.
var ErrWorkerPanic = errors.New("worker panic")

var (
	poolTasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokedex_pool_tasks_total",
		Help: "Fan-out tasks by outcome",
	}, []string{"outcome"})

	poolActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokedex_pool_active_workers",
		Help: "Workers currently running a fan-out task",
	})
)

// Config holds pool configuration
type Config struct {
	// MaxConcurrency is the maximum number of simultaneous units of work.
	// The upstream API is public and shared, 8 keeps it comfortable.
	MaxConcurrency int

	// Timeout bounds each unit of work. Zero disables the per-task timeout.
	Timeout time.Duration
}

// DefaultConfig returns the configuration used for listing lookups
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 8,
		Timeout:        15 * time.Second,
	}
}

// Pool runs fan-out work with a concurrency ceiling
type Pool struct {
	config Config
	logger zerolog.Logger
}

// NewPool creates a new pool
func NewPool(config Config) *Pool {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}
	if config.Timeout < 0 {
		config.Timeout = 0
	}

	return &Pool{
		config: config,
		logger: log.With().Str("component", "pagination").Logger(),
	}
}

// MaxConcurrency returns the effective concurrency ceiling.
func (p *Pool) MaxConcurrency() int {
	return p.config.MaxConcurrency
}

// Result is the outcome of one unit of work, stored at its input index.
type Result[R any] struct {
	Value R
	Err   error
}

// Map applies fn to every element of in using at most MaxConcurrency workers
// and returns one Result per input, in input order. It returns after all
// inputs are resolved. Inputs not started before ctx is done resolve with
// the context error.
func Map[T, R any](ctx context.Context, p *Pool, in []T, fn func(ctx context.Context, idx int, v T) (R, error)) []Result[R] {
	results := make([]Result[R], len(in))
	if len(in) == 0 {
		return results
	}

	start := time.Now()
	workers := p.config.MaxConcurrency
	if workers > len(in) {
		workers = len(in)
	}

	queue := make(chan int, len(in))
	for i := range in {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			processed := 0

			for idx := range queue {
				if err := ctx.Err(); err != nil {
					results[idx] = Result[R]{Err: err}
					poolTasksTotal.WithLabelValues("cancelled").Inc()
					continue
				}

				results[idx] = run(ctx, p, idx, in[idx], fn)
				processed++
			}

			p.logger.Debug().
				Int("worker_id", workerID).
				Int("tasks_processed", processed).
				Msg("Worker completed")
		}(w)
	}

	wg.Wait()

	p.logger.Debug().
		Int("tasks", len(in)).
		Int("workers", workers).
		Dur("duration", time.Since(start)).
		Msg("Fan-out complete")

	return results
}

// run executes a single unit of work with its timeout and a panic guard.
func run[T, R any](ctx context.Context, p *Pool, idx int, v T, fn func(context.Context, int, T) (R, error)) (res Result[R]) {
	poolActiveWorkers.Inc()
	defer poolActiveWorkers.Dec()

	taskCtx := ctx
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Int("index", idx).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Fan-out task panicked")
			poolTasksTotal.WithLabelValues("panic").Inc()
			res = Result[R]{Err: fmt.Errorf("%w: %v", ErrWorkerPanic, r)}
		}
	}()

	value, err := fn(taskCtx, idx, v)
	if err != nil {
		poolTasksTotal.WithLabelValues("error").Inc()
		return Result[R]{Value: value, Err: err}
	}

	poolTasksTotal.WithLabelValues("ok").Inc()
	return Result[R]{Value: value}
}

// Values unpacks results, returning the values in input order and every
// slot error joined together.
func Values[R any](results []Result[R]) ([]R, error) {
	values := make([]R, len(results))
	var errs []error
	for i, r := range results {
		values[i] = r.Value
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, r.Err))
		}
	}
	return values, errors.Join(errs...)
}
