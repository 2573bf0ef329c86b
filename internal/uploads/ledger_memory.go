package uploads

import (
	"context"
	"sync"
)

// MemoryLedger is an in-memory implementation of Ledger. The mutex spans the
// whole read-modify-write so concurrent appends for one account serialize and
// the capacity invariant holds.
type MemoryLedger struct {
	mu   sync.RWMutex
	data map[string][]Upload // userId -> records, insertion order
}

// NewMemoryLedger constructs a MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{data: make(map[string][]Upload)}
}

func (l *MemoryLedger) Append(ctx context.Context, userID string, rec Upload) ([]Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	records := append(l.data[userID], rec)

	var evicted []Upload
	if len(records) > Capacity {
		overflow := len(records) - Capacity
		evicted = append(evicted, records[:overflow]...)
		records = records[overflow:]
	}
	l.data[userID] = records
	return evicted, nil
}

func (l *MemoryLedger) Remove(ctx context.Context, userID, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.data[userID]
	for i := range records {
		if records[i].ID == recordID {
			l.data[userID] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (l *MemoryLedger) List(ctx context.Context, userID string) ([]Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := l.data[userID]
	out := make([]Upload, len(records))
	copy(out, records)
	return out, nil
}
