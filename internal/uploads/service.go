package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"retail360-backend/internal/shared/storage/object"
	"retail360-backend/internal/shared/telemetry"
	"retail360-backend/internal/users"
)

var ErrNoFile = errors.New("no file provided")

// Engine forwards a spooled file to the processing engine.
type Engine interface {
	Process(ctx context.Context, filename string, r io.Reader) (json.RawMessage, error)
}

// ProcessingError reports a failed forward. Detail is bounded to the engine's
// response body; transport failures carry a fixed message instead.
type ProcessingError struct {
	Detail any
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// IngestResult is the outcome of a committed upload.
type IngestResult struct {
	Record  Upload
	Engine  json.RawMessage
	Uploads []Upload
}

// Service coordinates one upload: spool the file, record it in the ledger,
// forward it to the engine, and reconcile. The ledger entry is rolled back
// when the forward fails, and the spool file is released on every exit path.
type Service struct {
	Ledger Ledger
	Spool  object.ObjectStore
	Engine Engine
	Users  users.Repo
}

// NewService constructs a Service.
func NewService(ledger Ledger, spool object.ObjectStore, engine Engine, userRepo users.Repo) *Service {
	return &Service{Ledger: ledger, Spool: spool, Engine: engine, Users: userRepo}
}

// Ingest runs the upload hand-off for one file.
func (s *Service) Ingest(ctx context.Context, userID, filename string, file io.Reader) (IngestResult, error) {
	if file == nil {
		return IngestResult{}, ErrNoFile
	}

	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return IngestResult{}, ErrOwnerNotFound
		}
		return IngestResult{}, fmt.Errorf("load account: %w", err)
	}

	storageKey, _, _, err := s.Spool.Save(ctx, userID, filename, file)
	if err != nil {
		return IngestResult{}, fmt.Errorf("spool file: %w", err)
	}
	// Scoped-resource obligation: the spool file goes away on success,
	// engine failure, and panic alike.
	defer s.release(userID, storageKey)

	rec := Upload{
		ID:         uuid.NewString(),
		UserID:     userID,
		Filename:   filename,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	// Opened before the ledger append: once this record is visible a
	// concurrent upload's eviction may release the key, and an already-open
	// handle keeps reading regardless.
	spooled, err := s.Spool.Open(ctx, storageKey)
	if err != nil {
		return IngestResult{}, fmt.Errorf("open spooled file: %w", err)
	}

	evicted, err := s.Ledger.Append(ctx, userID, rec)
	if err != nil {
		spooled.Close()
		return IngestResult{}, fmt.Errorf("append ledger: %w", err)
	}
	for _, old := range evicted {
		s.release(userID, old.StorageKey)
	}

	engineResp, err := s.Engine.Process(ctx, filename, spooled)
	spooled.Close()
	if err != nil {
		s.rollback(ctx, userID, rec.ID)
		return IngestResult{}, &ProcessingError{Detail: engineDetail(err), Err: err}
	}

	list, err := s.Ledger.List(ctx, userID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("list uploads: %w", err)
	}

	return IngestResult{Record: rec, Engine: engineResp, Uploads: list}, nil
}

// Delete removes one record from the account's ledger.
func (s *Service) Delete(ctx context.Context, userID, recordID string) ([]Upload, error) {
	if err := s.Ledger.Remove(ctx, userID, recordID); err != nil {
		return nil, err
	}
	return s.Ledger.List(ctx, userID)
}

// List returns the account's ledger in insertion order.
func (s *Service) List(ctx context.Context, userID string) ([]Upload, error) {
	return s.Ledger.List(ctx, userID)
}

// rollback removes the record appended before a failed forward so the ledger
// never points at storage that was already cleaned up.
func (s *Service) rollback(ctx context.Context, userID, recordID string) {
	if err := s.Ledger.Remove(ctx, userID, recordID); err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.Error("upload.rollback.failed", map[string]any{
			"user_id":   userID,
			"record_id": recordID,
			"err":       err.Error(),
		})
	}
}

func (s *Service) release(userID, storageKey string) {
	if storageKey == "" {
		return
	}
	// Detached from the request context: cleanup must run even when the
	// request was cancelled.
	if err := s.Spool.Remove(context.Background(), storageKey); err != nil {
		telemetry.Error("upload.spool.release_failed", map[string]any{
			"user_id":     userID,
			"storage_key": storageKey,
			"err":         err.Error(),
		})
	}
}

type detailer interface {
	EngineDetail() any
}

func engineDetail(err error) any {
	var d detailer
	if errors.As(err, &d) {
		if detail := d.EngineDetail(); detail != nil {
			return detail
		}
	}
	return "processing engine unreachable"
}
