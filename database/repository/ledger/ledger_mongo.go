package ledgerRepo

import (
	"context"
	"fmt"
	"time"

	"vastramitra/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Bookkeeping fields stored next to every document.
const (
	fieldPath  = "_id"
	fieldOwner = "_owner"
	fieldKey   = "_key"
)

// MongoLedger implements Ledger with one Mongo collection per logical
// collection. Documents are keyed by their full path.
type MongoLedger struct {
	db *mongo.Database
}

// NewMongoLedger creates a Ledger backed by db.
func NewMongoLedger(db *mongo.Database) Ledger {
	repo := &MongoLedger{db: db}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create ledger indexes: %v\n", err)
	}
	return repo
}

// newContext derives a per-call timeout from the caller's context.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (l *MongoLedger) coll(c models.Collection) *mongo.Collection {
	return l.db.Collection(string(c))
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (l *MongoLedger) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	byCollection := map[models.Collection][]mongo.IndexModel{
		models.CollCustomerAppointments: {{Keys: bson.D{{Key: fieldOwner, Value: 1}, {Key: "createdAt", Value: 1}}}},
		models.CollCustomerOrders:       {{Keys: bson.D{{Key: fieldOwner, Value: 1}, {Key: "createdAt", Value: 1}}}},
		models.CollNotifications:        {{Keys: bson.D{{Key: fieldOwner, Value: 1}, {Key: "timestamp", Value: -1}}}},
		models.CollOrders:               {{Keys: bson.D{{Key: "status", Value: 1}}}},
		models.CollTaskStages:           {{Keys: bson.D{{Key: "orderId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		models.CollPayments: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "orderId", Value: 1}}},
		},
		models.CollOutbox:   {{Keys: bson.D{{Key: "createdAt", Value: 1}}}},
		models.CollInvoices: {{Keys: bson.D{{Key: "customerId", Value: 1}}}},
	}

	for c, idx := range byCollection {
		if _, err := l.coll(c).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", c, err)
		}
	}
	return nil
}

// toDocument flattens v into a bson.M carrying the bookkeeping fields of ref.
func toDocument(ref models.DocRef, v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", ref.Path(), err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", ref.Path(), err)
	}
	doc[fieldPath] = ref.Path()
	doc[fieldKey] = ref.ID
	if ref.Collection.Scoped() {
		doc[fieldOwner] = ref.OwnerID
	}
	return doc, nil
}

// toSnapshot strips bookkeeping fields from a stored document.
func toSnapshot(c models.Collection, doc bson.M) models.Snapshot {
	ref := models.DocRef{Collection: c}
	if k, ok := doc[fieldKey].(string); ok {
		ref.ID = k
	}
	if o, ok := doc[fieldOwner].(string); ok {
		ref.OwnerID = o
	}
	delete(doc, fieldPath)
	delete(doc, fieldKey)
	delete(doc, fieldOwner)
	return models.Snapshot{Ref: ref, Exists: true, Data: doc, At: time.Now()}
}
