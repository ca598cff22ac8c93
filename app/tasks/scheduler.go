package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/ticker-news/app/watchlist"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	defaultTaskTimeout = 5 * time.Minute
	maxRetryDelay      = 30 * time.Second
)

type Scheduler struct {
	watchlist   *watchlist.Watchlist
	newsService NewsServiceInterface
	interval    time.Duration
	workerCount int
	retryBase   time.Duration
	taskTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(watchlist *watchlist.Watchlist, newsService NewsServiceInterface,
	interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		watchlist:   watchlist,
		newsService: newsService,
		interval:    interval,
		workerCount: workerCount,
		retryBase:   time.Second,
		taskTimeout: defaultTaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels in-flight work and waits for the workers. The queue stays open;
// EnqueueTask fails once the context is cancelled.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	tickers := s.watchlist.GetTickers()
	if len(tickers) == 0 {
		slog.Debug("Watchlist is empty")
		return
	}

	slog.Debug("Scheduling watchlist refresh", "count", len(tickers))

	for _, ticker := range tickers {
		task := NewRefreshTickerTask(ticker, s.newsService)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue RefreshTickerTask", "ticker", ticker, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := s.retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "ticker", task.GetTicker(), "retry_count", task.GetRetryCount(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}

		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}

// retryDelay doubles per attempt, starting at retryBase, capped at maxRetryDelay.
func (s *Scheduler) retryDelay(attempt int) time.Duration {
	delay := s.retryBase << uint(attempt-1)
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	return delay
}
