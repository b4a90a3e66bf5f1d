package ledgerRepo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"vastramitra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Query returns matching documents ordered by creation time.
func (l *MongoLedger) Query(ctx context.Context, c models.Collection, ownerID string, filter map[string]any) ([]models.Snapshot, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}
	if c.Scoped() {
		f[fieldOwner] = ownerID
	}

	opts := options.Find().SetSort(bson.D{{Key: sortField(c), Value: 1}, {Key: fieldPath, Value: 1}})
	cursor, err := l.coll(c).Find(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c, err)
	}
	defer cursor.Close(ctx)

	var snaps []models.Snapshot
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", c, err)
		}
		snaps = append(snaps, toSnapshot(c, doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on %s: %w", c, err)
	}
	return snaps, nil
}

func sortField(c models.Collection) string {
	switch c {
	case models.CollNotifications:
		return "timestamp"
	case models.CollInvoices:
		return "issuedAt"
	}
	return "createdAt"
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	FullDocument  bson.M `bson:"fullDocument"`
}

// Watch follows one document through a change stream. The deployment must
// be a replica set for change streams to be available.
func (l *MongoLedger) Watch(ctx context.Context, ref models.DocRef) (<-chan models.Snapshot, error) {
	coll := l.coll(ref.Collection)
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: ref.Path()}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", ref.Path(), err)
	}

	initial := models.Snapshot{Ref: ref, At: time.Now()}
	var doc bson.M
	err = coll.FindOne(ctx, bson.M{fieldPath: ref.Path()}).Decode(&doc)
	switch {
	case err == nil:
		initial = toSnapshot(ref.Collection, doc)
		initial.Ref = ref
	case !errors.Is(err, mongo.ErrNoDocuments):
		stream.Close(ctx)
		return nil, fmt.Errorf("failed to read %s: %w", ref.Path(), err)
	}

	out := make(chan models.Snapshot, 16)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		select {
		case out <- initial:
		case <-ctx.Done():
			return
		}

		for stream.Next(ctx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				log.Printf("[LedgerWatch] failed to decode change on %s: %v", ref.Path(), err)
				continue
			}
			snap := models.Snapshot{Ref: ref, At: time.Now()}
			if ev.OperationType != "delete" && ev.FullDocument != nil {
				snap = toSnapshot(ref.Collection, ev.FullDocument)
				snap.Ref = ref
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("[LedgerWatch] change stream on %s ended: %v", ref.Path(), err)
		}
	}()
	return out, nil
}
