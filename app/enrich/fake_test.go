package enrich

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/ticker-news/app/ai"
)

// fakeCompleter answers sentiment and summary prompts from fixed values.
type fakeCompleter struct {
	sentiment    string
	summary      string
	err          error
	delay        time.Duration
	calls        atomic.Int32
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32
	mu           sync.Mutex
	temperatures []float64
}

func (f *fakeCompleter) Complete(ctx context.Context, r ai.Request) (string, error) {
	f.calls.Add(1)
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	f.mu.Lock()
	f.temperatures = append(f.temperatures, r.Temperature)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.err != nil {
		return "", f.err
	}
	if strings.Contains(r.System, "sentiment") {
		return f.sentiment, nil
	}
	return f.summary, nil
}
