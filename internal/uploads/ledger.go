package uploads

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a delete for a record id the account does not hold.
	ErrNotFound = errors.New("upload not found")
	// ErrOwnerNotFound reports an append against a missing account.
	ErrOwnerNotFound = errors.New("upload owner not found")
)

// Ledger is the bounded, insertion-ordered upload history of an account.
// Append is an atomic read-modify-write: after it returns, the account holds
// at most Capacity records, and anything evicted to make room is returned to
// the caller for cleanup of its backing storage.
type Ledger interface {
	Append(ctx context.Context, userID string, rec Upload) (evicted []Upload, err error)
	Remove(ctx context.Context, userID, recordID string) error
	List(ctx context.Context, userID string) ([]Upload, error)
}
