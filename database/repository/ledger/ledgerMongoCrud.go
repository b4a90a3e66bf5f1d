package ledgerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vastramitra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Get decodes the document at ref into out.
func (l *MongoLedger) Get(ctx context.Context, ref models.DocRef, out any) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	err := l.coll(ref.Collection).FindOne(ctx, bson.M{fieldPath: ref.Path()}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", ref.Path(), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", ref.Path(), err)
	}
	return nil
}

// Set replaces the document at ref.
func (l *MongoLedger) Set(ctx context.Context, ref models.DocRef, doc any) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	full, err := toDocument(ref, doc)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := l.coll(ref.Collection).ReplaceOne(ctx, bson.M{fieldPath: ref.Path()}, full, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", ref.Path(), err)
	}
	return nil
}

// Merge sets top-level fields on the document at ref, upserting it.
func (l *MongoLedger) Merge(ctx context.Context, ref models.DocRef, fields map[string]any) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	onInsert := bson.M{fieldKey: ref.ID}
	if ref.Collection.Scoped() {
		onInsert[fieldOwner] = ref.OwnerID
	}
	update := bson.M{
		"$set":         bson.M(fields),
		"$setOnInsert": onInsert,
	}
	opts := options.Update().SetUpsert(true)
	if _, err := l.coll(ref.Collection).UpdateOne(ctx, bson.M{fieldPath: ref.Path()}, update, opts); err != nil {
		return fmt.Errorf("failed to merge into %s: %w", ref.Path(), err)
	}
	return nil
}

// CompareAndSet flips field from expected to value in a single-document update.
func (l *MongoLedger) CompareAndSet(ctx context.Context, ref models.DocRef, field string, expected, value any, extra map[string]any) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{field: value}
	for k, v := range extra {
		set[k] = v
	}
	coll := l.coll(ref.Collection)
	res, err := coll.UpdateOne(ctx, bson.M{fieldPath: ref.Path(), field: expected}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", ref.Path(), err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	n, err := coll.CountDocuments(ctx, bson.M{fieldPath: ref.Path()})
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", ref.Path(), err)
	}
	if n == 0 {
		return false, fmt.Errorf("%s: %w", ref.Path(), ErrNotFound)
	}
	return false, nil
}

// Delete removes the document at ref.
func (l *MongoLedger) Delete(ctx context.Context, ref models.DocRef) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := l.coll(ref.Collection).DeleteOne(ctx, bson.M{fieldPath: ref.Path()}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ref.Path(), err)
	}
	return nil
}
