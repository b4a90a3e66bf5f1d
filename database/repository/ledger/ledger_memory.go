package ledgerRepo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"vastramitra/models"

	"go.mongodb.org/mongo-driver/bson"
)

// FaultFunc lets callers inject write failures into a MemoryLedger. op is
// one of "set", "merge", "cas" or "delete".
type FaultFunc func(op string, ref models.DocRef) error

type memoryEntry struct {
	ref models.DocRef
	doc bson.M
	seq uint64
}

// MemoryLedger is an in-process Ledger. Documents are normalised through
// BSON so reads behave like the Mongo implementation.
type MemoryLedger struct {
	mu     sync.Mutex
	docs   map[string]*memoryEntry
	subs   map[string]map[chan models.Snapshot]struct{}
	seq    uint64
	fault  FaultFunc
	writes int
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		docs: make(map[string]*memoryEntry),
		subs: make(map[string]map[chan models.Snapshot]struct{}),
	}
}

// SetFault installs (or clears, with nil) a write fault hook.
func (l *MemoryLedger) SetFault(fn FaultFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fault = fn
}

// Writes returns the number of successful writes so far.
func (l *MemoryLedger) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

func normalise(v any) (bson.M, error) {
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := bson.M{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeInto(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (l *MemoryLedger) checkFault(op string, ref models.DocRef) error {
	if l.fault == nil {
		return nil
	}
	if err := l.fault(op, ref); err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, ref.Path(), err)
	}
	return nil
}

// Get decodes the document at ref into out.
func (l *MemoryLedger) Get(_ context.Context, ref models.DocRef, out any) error {
	l.mu.Lock()
	e, ok := l.docs[ref.Path()]
	var doc bson.M
	if ok {
		doc = e.doc
	}
	l.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", ref.Path(), ErrNotFound)
	}
	if err := decodeInto(doc, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", ref.Path(), err)
	}
	return nil
}

// Set replaces the document at ref.
func (l *MemoryLedger) Set(_ context.Context, ref models.DocRef, v any) error {
	doc, err := normalise(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ref.Path(), err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkFault("set", ref); err != nil {
		return err
	}
	l.put(ref, doc)
	return nil
}

// Merge sets top-level fields on the document at ref, creating it if needed.
func (l *MemoryLedger) Merge(_ context.Context, ref models.DocRef, fields map[string]any) error {
	patch, err := normalise(fields)
	if err != nil {
		return fmt.Errorf("marshal fields for %s: %w", ref.Path(), err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkFault("merge", ref); err != nil {
		return err
	}
	doc := bson.M{}
	if e, ok := l.docs[ref.Path()]; ok {
		for k, v := range e.doc {
			doc[k] = v
		}
	}
	for k, v := range patch {
		doc[k] = v
	}
	l.put(ref, doc)
	return nil
}

// CompareAndSet flips field from expected to value under the ledger lock.
func (l *MemoryLedger) CompareAndSet(_ context.Context, ref models.DocRef, field string, expected, value any, extra map[string]any) (bool, error) {
	set := bson.M{field: value}
	for k, v := range extra {
		set[k] = v
	}
	patch, err := normalise(set)
	if err != nil {
		return false, fmt.Errorf("marshal fields for %s: %w", ref.Path(), err)
	}
	want, err := normalise(bson.M{"v": expected})
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkFault("cas", ref); err != nil {
		return false, err
	}
	e, ok := l.docs[ref.Path()]
	if !ok {
		return false, fmt.Errorf("%s: %w", ref.Path(), ErrNotFound)
	}
	if !reflect.DeepEqual(e.doc[field], want["v"]) {
		return false, nil
	}
	doc := bson.M{}
	for k, v := range e.doc {
		doc[k] = v
	}
	for k, v := range patch {
		doc[k] = v
	}
	l.put(ref, doc)
	return true, nil
}

// Delete removes the document at ref.
func (l *MemoryLedger) Delete(_ context.Context, ref models.DocRef) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.checkFault("delete", ref); err != nil {
		return err
	}
	if _, ok := l.docs[ref.Path()]; !ok {
		return nil
	}
	delete(l.docs, ref.Path())
	l.writes++
	l.publish(models.Snapshot{Ref: ref, At: time.Now()})
	return nil
}

// Query returns matching documents in insertion order.
func (l *MemoryLedger) Query(_ context.Context, c models.Collection, ownerID string, filter map[string]any) ([]models.Snapshot, error) {
	want, err := normalise(filter)
	if err != nil {
		return nil, fmt.Errorf("marshal filter for %s: %w", c, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var hits []*memoryEntry
	for _, e := range l.docs {
		if e.ref.Collection != c {
			continue
		}
		if c.Scoped() && e.ref.OwnerID != ownerID {
			continue
		}
		if matches(e.doc, want) {
			hits = append(hits, e)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	snaps := make([]models.Snapshot, 0, len(hits))
	for _, e := range hits {
		snaps = append(snaps, l.snapshotOf(e))
	}
	return snaps, nil
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

// Watch streams snapshots of ref until ctx is cancelled.
func (l *MemoryLedger) Watch(ctx context.Context, ref models.DocRef) (<-chan models.Snapshot, error) {
	ch := make(chan models.Snapshot, 64)

	l.mu.Lock()
	path := ref.Path()
	if l.subs[path] == nil {
		l.subs[path] = make(map[chan models.Snapshot]struct{})
	}
	l.subs[path][ch] = struct{}{}
	initial := models.Snapshot{Ref: ref, At: time.Now()}
	if e, ok := l.docs[path]; ok {
		initial = l.snapshotOf(e)
	}
	ch <- initial
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs[path], ch)
		if len(l.subs[path]) == 0 {
			delete(l.subs, path)
		}
		close(ch)
		l.mu.Unlock()
	}()
	return ch, nil
}

// put stores doc and notifies subscribers. Caller holds l.mu.
func (l *MemoryLedger) put(ref models.DocRef, doc bson.M) {
	l.seq++
	e, ok := l.docs[ref.Path()]
	if !ok {
		e = &memoryEntry{ref: ref, seq: l.seq}
		l.docs[ref.Path()] = e
	}
	e.doc = doc
	l.writes++
	l.publish(l.snapshotOf(e))
}

// publish delivers snap without blocking; a full subscriber skips it and
// sees the next one. Caller holds l.mu.
func (l *MemoryLedger) publish(snap models.Snapshot) {
	for ch := range l.subs[snap.Ref.Path()] {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (l *MemoryLedger) snapshotOf(e *memoryEntry) models.Snapshot {
	data := bson.M{}
	for k, v := range e.doc {
		data[k] = v
	}
	return models.Snapshot{Ref: e.ref, Exists: true, Data: data, At: time.Now()}
}
