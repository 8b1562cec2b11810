package slots

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/slot-tender/telemetry"
)

const tracerName = "slots"

// Store is the single owner of the read-modify-write cycle on the document.
//
// Mutations hold mu across load, mutate and save. Reads do not take the lock;
// they rely on the backend replacing the document atomically.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// NewStore returns a Store persisting through backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// EnsureInitialized seeds an empty document if none exists. Calling it on an
// already seeded store leaves the document untouched.
func (s *Store) EnsureInitialized(ctx context.Context) error {
	ok, err := s.backend.Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seedLocked(ctx)
}

// Load returns the current document.
func (s *Store) Load(ctx context.Context) (Document, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return Document{}, err
	}
	return s.read(ctx)
}

// Raw returns the persisted document bytes after checking they decode.
func (s *Store) Raw(ctx context.Context) ([]byte, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	data, err := s.backend.ReadDocument(ctx)
	if err != nil {
		telemetry.IncStorageError("read")
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if _, err := decodeDocument(data); err != nil {
		telemetry.IncStorageError("read")
		return nil, fmt.Errorf("%w: decode: %w", ErrStorageRead, err)
	}
	return data, nil
}

// Toggle flips slot between occupied and available and returns the new state.
func (s *Store) Toggle(ctx context.Context, slot Slot) (State, error) {
	if !slot.Valid() {
		return Available, fmt.Errorf("%w: %q", ErrInvalidSlot, string(slot))
	}
	ctx, span := telemetry.StartSpan(ctx, tracerName, "slots.Toggle", attribute.String("slot", slot.String()))
	defer span.End()

	state := Available
	err := s.mutate(ctx, "toggle", func(doc *Document) {
		key := slot.Key()
		if lo.Contains(doc.Occupied, key) {
			doc.Occupied = lo.Without(doc.Occupied, key)
			state = Available
			return
		}
		doc.Occupied = append(doc.Occupied, key)
		state = Occupied
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return Available, err
	}
	telemetry.RecordToggle(state.String())
	telemetry.SetSpanSuccess(span)
	return state, nil
}

// Query reports the state of slot without modifying anything.
func (s *Store) Query(ctx context.Context, slot Slot) (State, error) {
	if !slot.Valid() {
		return Available, fmt.Errorf("%w: %q", ErrInvalidSlot, string(slot))
	}
	doc, err := s.Load(ctx)
	if err != nil {
		return Available, err
	}
	if doc.Contains(slot) {
		return Occupied, nil
	}
	return Available, nil
}

// List returns up to limit occupied slots in document order together with the
// total number of occupied slots. A limit <= 0 returns every slot.
func (s *Store) List(ctx context.Context, limit int) ([]Slot, int, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	all := doc.Slots()
	if limit > 0 && len(all) > limit {
		return all[:limit], len(all), nil
	}
	return all, len(all), nil
}

// Reset marks every slot as available.
func (s *Store) Reset(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "slots.Reset")
	defer span.End()

	err := s.mutate(ctx, "reset", func(doc *Document) {
		*doc = emptyDocument()
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetSpanSuccess(span)
	return nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func(doc *Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { telemetry.ObserveStoreOp(op, time.Since(start)) }()

	if err := s.seedLocked(ctx); err != nil {
		return err
	}
	doc, err := s.read(ctx)
	if err != nil {
		return err
	}
	fn(&doc)
	if err := s.saveLocked(ctx, doc); err != nil {
		return err
	}
	telemetry.SetOccupiedSlots(len(doc.Occupied))
	return nil
}

func (s *Store) read(ctx context.Context) (Document, error) {
	data, err := s.backend.ReadDocument(ctx)
	if err != nil {
		telemetry.IncStorageError("read")
		return Document{}, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		telemetry.IncStorageError("read")
		return Document{}, fmt.Errorf("%w: decode: %w", ErrStorageRead, err)
	}
	return doc, nil
}

// seedLocked must be called with mu held.
func (s *Store) seedLocked(ctx context.Context) error {
	ok, err := s.backend.Exists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if ok {
		return nil
	}
	return s.saveLocked(ctx, emptyDocument())
}

// saveLocked must be called with mu held.
func (s *Store) saveLocked(ctx context.Context, doc Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStorageWrite, err)
	}
	if err := s.backend.WriteDocument(ctx, data); err != nil {
		telemetry.IncStorageError("write")
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}
