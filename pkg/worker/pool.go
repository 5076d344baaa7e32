package worker

import (
	"context"
	"sync"

	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

// Task is one unit of fan-out work. The context passed to it is the pool's
// run context, cancelled on Stop.
type Task func(ctx context.Context)

type PoolConfig struct {
	Workers   int
	QueueSize int
}

// Pool is a bounded task executor dedicated to notification fan-out. It is
// deliberately separate from any request-serving machinery so that a
// notification storm cannot starve other work. Submission is non-blocking:
// when the queue is full the caller gets a backpressure signal instead of
// unbounded growth.
type Pool struct {
	tasks  chan Task
	logger *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

func NewPool(config PoolConfig, log *logger.Logger) *Pool {
	if config.Workers <= 0 {
		panic("Workers must be greater than 0")
	}
	if config.QueueSize <= 0 {
		panic("QueueSize must be greater than 0")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan Task, config.QueueSize),
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}

	p.wg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error(nil, "dispatch task panicked", "panic", r)
		}
	}()
	task(p.ctx)
}

// TrySubmit enqueues task without blocking. It returns false when the queue
// is full or the pool has stopped; the caller decides how to record the drop.
func (p *Pool) TrySubmit(task Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Depth reports the number of queued, not yet started tasks.
func (p *Pool) Depth() int {
	return len(p.tasks)
}

// Stop closes the queue, waits for queued tasks to drain, then cancels the
// run context handed to tasks.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}
