package tasks

import (
	"context"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeRefreshTicker TaskType = "refresh_ticker"
)

const (
	DefaultMaxRetries = 3
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTicker() string
	GetRetryCount() int
	IncrementRetryCount()
	CanRetry() bool
}

type Task struct {
	ID         string
	Type       TaskType
	Ticker     string
	RetryCount int
	MaxRetries int
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetTicker() string {
	return t.Ticker
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func NewTask(taskType TaskType, ticker string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Ticker:     ticker,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}
