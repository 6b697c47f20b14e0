package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunSummary is what remains of a finished run: enough for a status line,
// never the offers themselves.
type RunSummary struct {
	ID          string    `json:"id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Pairs       int       `json:"pairs"`
	Offers      int       `json:"offers"`
	Cheapest    float64   `json:"cheapest,omitempty"` // 0 when no offers
	Currency    string    `json:"currency"`
	Complete    bool      `json:"complete"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
}

// RunLog keeps the most recent run summaries in memory, newest first.
// Process-lifetime only; nothing survives a restart.
type RunLog struct {
	mu   sync.Mutex
	runs []RunSummary
	cap  int
}

func NewRunLog(capacity int) *RunLog {
	if capacity <= 0 {
		capacity = 20
	}
	return &RunLog{cap: capacity}
}

func (l *RunLog) Record(c Criteria, res SearchResult, started, finished time.Time) RunSummary {
	summary := RunSummary{
		ID:          uuid.NewString(),
		Origin:      c.Origin,
		Destination: c.Destination,
		Pairs:       c.PairCount(),
		Offers:      len(res.Offers),
		Currency:    c.Currency,
		Complete:    res.Complete,
		Started:     started,
		Finished:    finished,
	}
	for _, o := range res.Offers {
		if summary.Cheapest == 0 || o.Price < summary.Cheapest {
			summary.Cheapest = o.Price
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append([]RunSummary{summary}, l.runs...)
	if len(l.runs) > l.cap {
		l.runs = l.runs[:l.cap]
	}
	return summary
}

// Recent returns up to n summaries, newest first.
func (l *RunLog) Recent(n int) []RunSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.runs) {
		n = len(l.runs)
	}
	out := make([]RunSummary, n)
	copy(out, l.runs[:n])
	return out
}

// Last returns the most recent summary, if any.
func (l *RunLog) Last() (RunSummary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.runs) == 0 {
		return RunSummary{}, false
	}
	return l.runs[0], true
}
