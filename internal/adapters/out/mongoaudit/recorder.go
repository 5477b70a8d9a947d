// Package mongoaudit appends slot capacity events to a MongoDB collection.
package mongoaudit

import (
	"context"
	"fmt"
	"time"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/core/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding the audit trail.
const CollectionName = "slot_events"

var _ ports.SlotEventRecorder = (*SlotEventRecorder)(nil)

// SlotEventRecorder writes one document per event. Documents are never
// updated.
type SlotEventRecorder struct {
	collection *mongo.Collection
}

func NewSlotEventRecorder(db *mongo.Database) *SlotEventRecorder {
	return &SlotEventRecorder{collection: db.Collection(CollectionName)}
}

// EnsureIndexes creates the slot/time index used to read a slot's history.
func (r *SlotEventRecorder) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "slot_id", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create slot_events index: %w", err)
	}
	return nil
}

// EventDocument is the stored form of a ports.SlotEvent.
type EventDocument struct {
	SlotID     string    `bson:"slot_id"`
	Kind       string    `bson:"kind"`
	Capacity   int       `bson:"capacity"`
	Available  int       `bson:"available"`
	Reason     string    `bson:"reason,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
}

func (r *SlotEventRecorder) Record(ctx context.Context, event ports.SlotEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	doc := EventDocument{
		SlotID:     event.SlotID.String(),
		Kind:       string(event.Kind),
		Capacity:   event.Capacity,
		Available:  event.Available,
		Reason:     event.Reason,
		OccurredAt: occurredAt.UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert slot event: %w", err)
	}
	return nil
}

// History returns the latest events of a slot, newest first.
func (r *SlotEventRecorder) History(ctx context.Context, slotID kernel.UUID, limit int64) ([]EventDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"slot_id": slotID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("find slot events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []EventDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode slot events: %w", err)
	}
	return docs, nil
}

// NoopRecorder drops every event. It stands in when no MongoDB is configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, ports.SlotEvent) error {
	return nil
}

// Connect opens a client and checks it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}
