package deviceRepo

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

// MongoDeviceRepo implements DeviceRepository using MongoDB.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

func NewMongoDeviceRepo(db *mongo.Database) DeviceRepository {
	repo := &MongoDeviceRepo{coll: db.Collection("push_targets")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoDeviceRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "recipientId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoDeviceRepo) Get(ctx context.Context, recipientID string) (*models.PushTarget, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var target models.PushTarget
	err := r.coll.FindOne(ctx, bson.M{"recipientId": recipientID}).Decode(&target)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoTarget
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch push target for %s: %w", recipientID, err)
	}
	return &target, nil
}

func (r *MongoDeviceRepo) Upsert(ctx context.Context, target models.PushTarget) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if target.FCMToken != "" {
		set["fcmToken"] = target.FCMToken
	}
	if target.Phone != "" {
		set["phone"] = target.Phone
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"recipientId": target.RecipientID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save push target for %s: %w", target.RecipientID, err)
	}
	return nil
}

func (r *MongoDeviceRepo) RemoveToken(ctx context.Context, recipientID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"recipientId": recipientID},
		bson.M{"$unset": bson.M{"fcmToken": ""}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove push token for %s: %w", recipientID, err)
	}
	return nil
}
