package sweep

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/goal-tracker/internal/goal"
)

const (
	defaultMaxWorkers = 4
	defaultQueueSize  = 100
	jobTimeout        = 30 * time.Second
)

// Evaluator is the slice of goal.Service the sweep drives.
type Evaluator interface {
	ActiveOwners(ctx context.Context) ([]string, error)
	Evaluate(ctx context.Context, owner string, filter goal.ListFilter, now time.Time) ([]*goal.GoalProgress, error)
}

type Config struct {
	Interval   time.Duration
	MaxWorkers int
	QueueSize  int
}

// Job evaluates every active goal of one owner.
type Job struct {
	Owner string
	Now   time.Time

	tally *tally
}

type tally struct {
	wg           sync.WaitGroup
	evaluated    atomic.Int64
	transitioned atomic.Int64
	syncErrors   atomic.Int64
	failed       atomic.Int64
}

// Summary describes one sweep.
type Summary struct {
	Owners       int
	Evaluated    int
	Transitioned int
	SyncErrors   int
	Failed       int
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("sweep worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("sweep worker processing owner", "worker_id", w.ID, "user_id", job.Owner)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("sweep worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Pool fans owners out to a fixed set of workers. Each worker runs the goal
// engine for one owner, which applies any automatic status change that is due.
type Pool struct {
	evaluator Evaluator
	logger    *slog.Logger
	interval  time.Duration

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once

	queueMu sync.Mutex
	closed  bool
}

func NewPool(config Config, evaluator Evaluator, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	interval := config.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	return &Pool{
		evaluator:  evaluator,
		logger:     logger,
		interval:   interval,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, queueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			worker := NewWorker(i, p.workerPool, p.logger)
			worker.Start(p.ctx, &p.wg, p.process)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("goal sweep worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					job.tally.wg.Done()
					p.logger.Info("sweep dispatcher shutting down")
					return
				}
			case <-p.ctx.Done():
				job.tally.wg.Done()
				p.logger.Info("sweep dispatcher shutting down")
				return
			}
		case <-p.ctx.Done():
			p.logger.Info("sweep dispatcher shutting down")
			return
		}
	}
}

// Shutdown stops the workers and waits for the job in hand to finish. Jobs
// still queued are released unprocessed.
func (p *Pool) Shutdown() {
	p.stopOnce.Do(func() {
		p.logger.Info("shutting down goal sweep")
		p.cancel()

		p.queueMu.Lock()
		p.closed = true
		p.queueMu.Unlock()

		p.wg.Wait()
		if dropped := p.drainQueue(); dropped > 0 {
			p.logger.Warn("dropped queued sweep jobs at shutdown", "jobs", dropped)
		}
		p.logger.Info("goal sweep shutdown complete")
	})
}

func (p *Pool) enqueue(ctx context.Context, job Job) error {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	if p.closed {
		return context.Canceled
	}

	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// drainQueue must only run once the dispatcher has exited and enqueue is
// closed.
func (p *Pool) drainQueue() int {
	dropped := 0
	for {
		select {
		case job := <-p.jobQueue:
			job.tally.wg.Done()
			dropped++
		default:
			return dropped
		}
	}
}

// RunOnce evaluates the active goals of every owner that has one and waits
// for the workers to finish.
func (p *Pool) RunOnce(ctx context.Context, now time.Time) (Summary, error) {
	p.Start()

	owners, err := p.evaluator.ActiveOwners(ctx)
	if err != nil {
		return Summary{}, err
	}

	t := &tally{}
	queued := 0
	var queueErr error
	for _, owner := range owners {
		t.wg.Add(1)
		if queueErr = p.enqueue(ctx, Job{Owner: owner, Now: now, tally: t}); queueErr != nil {
			t.wg.Done()
			break
		}
		queued++
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	if queueErr != nil {
		if p.ctx.Err() == nil {
			p.logger.Warn("sweep interrupted while queueing", "queued", queued, "owners", len(owners))
			return t.summary(len(owners)), queueErr
		}
		<-done
		return t.summary(len(owners)), context.Canceled
	}

	select {
	case <-done:
	case <-ctx.Done():
		return t.summary(len(owners)), ctx.Err()
	case <-p.ctx.Done():
		// Shutdown releases every job it does not run.
		<-done
		return t.summary(len(owners)), context.Canceled
	}

	summary := t.summary(len(owners))
	p.logger.Info("goal sweep finished",
		"owners", summary.Owners,
		"evaluated", summary.Evaluated,
		"transitioned", summary.Transitioned,
		"sync_errors", summary.SyncErrors,
		"failed", summary.Failed)
	return summary, nil
}

// Run sweeps immediately and then on every interval until ctx is done.
func (p *Pool) Run(ctx context.Context, clock func() time.Time) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.RunOnce(ctx, clock()); err != nil {
			if ctx.Err() != nil || p.ctx.Err() != nil {
				return nil
			}
			p.logger.Error("failed to run goal sweep", "error", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		case <-p.ctx.Done():
			return nil
		}
	}
}

func (p *Pool) process(job Job) {
	defer job.tally.wg.Done()

	ctx, cancel := context.WithTimeout(p.ctx, jobTimeout)
	defer cancel()

	results, err := p.evaluator.Evaluate(ctx, job.Owner, goal.ListFilter{Status: string(goal.StatusActive)}, job.Now)
	if err != nil {
		job.tally.failed.Add(1)
		p.logger.Error("failed to evaluate owner goals", "user_id", job.Owner, "error", err)
		return
	}

	for _, result := range results {
		job.tally.evaluated.Add(1)
		if result.Transitioned {
			job.tally.transitioned.Add(1)
		}
		if result.SyncError != nil {
			job.tally.syncErrors.Add(1)
		}
	}
}

func (t *tally) summary(owners int) Summary {
	return Summary{
		Owners:       owners,
		Evaluated:    int(t.evaluated.Load()),
		Transitioned: int(t.transitioned.Load()),
		SyncErrors:   int(t.syncErrors.Load()),
		Failed:       int(t.failed.Load()),
	}
}
