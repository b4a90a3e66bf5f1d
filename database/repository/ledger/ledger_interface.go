package ledgerRepo

import (
	"context"
	"errors"
	"fmt"

	"vastramitra/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when an addressed document does not exist.
var ErrNotFound = errors.New("document not found")

// Ledger is the shared document store holding every view of a booking.
// Writes to different documents are independent; there are no
// multi-document transactions and concurrent writers resolve last-write-wins
// per field.
type Ledger interface {
	// Get decodes the document at ref into out.
	Get(ctx context.Context, ref models.DocRef, out any) error
	// Set replaces the document at ref, creating it if needed.
	Set(ctx context.Context, ref models.DocRef, doc any) error
	// Merge sets the given top-level fields, creating the document if needed.
	Merge(ctx context.Context, ref models.DocRef, fields map[string]any) error
	// Query returns documents of coll (under ownerID for scoped collections)
	// whose fields equal every filter value, oldest first.
	Query(ctx context.Context, coll models.Collection, ownerID string, filter map[string]any) ([]models.Snapshot, error)
	// CompareAndSet sets field to value (plus extra fields) only if it
	// currently equals expected. It reports whether the write happened.
	CompareAndSet(ctx context.Context, ref models.DocRef, field string, expected, value any, extra map[string]any) (bool, error)
	// Delete removes the document at ref. Deleting a missing document is not an error.
	Delete(ctx context.Context, ref models.DocRef) error
	// Watch streams the current snapshot of ref followed by one snapshot per
	// change until ctx is cancelled.
	Watch(ctx context.Context, ref models.DocRef) (<-chan models.Snapshot, error)
}

// QueryAs runs a query and decodes each hit into T.
func QueryAs[T any](ctx context.Context, l Ledger, coll models.Collection, ownerID string, filter map[string]any) ([]T, error) {
	snaps, err := l.Query(ctx, coll, ownerID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(snaps))
	for _, s := range snaps {
		var v T
		if err := s.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.Ref.Path(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Exists reports whether the document at ref is present.
func Exists(ctx context.Context, l Ledger, ref models.DocRef) (bool, error) {
	var discard map[string]any
	err := l.Get(ctx, ref, &discard)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ToFields flattens v (a struct or map) into top-level merge fields using
// its bson tags.
func ToFields(v any) (map[string]any, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	out := bson.M{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return map[string]any(out), nil
}
