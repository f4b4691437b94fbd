package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homestay/internal/app/outbox"
)

// Outbox persists event records alongside the aggregates so publication
// survives restarts. The publisher worker claims unsent records and marks
// them sent after the broker acknowledges them.
type Outbox struct {
	col *mongo.Collection
}

func NewOutbox(db *mongo.Database) *Outbox {
	col := db.Collection("app_outbox")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "sent", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	return &Outbox{col: col}
}

func (o *Outbox) Add(ctx context.Context, record outbox.EventRecord) error {
	doc := outboxDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt.UnixMilli(),
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
	}
	_, err := o.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (o *Outbox) Flush(context.Context) error { return nil }

func (o *Outbox) Claim(ctx context.Context, max int) ([]outbox.EventRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	if max > 0 {
		opts = opts.SetLimit(int64(max))
	}
	cur, err := o.col.Find(ctx, bson.M{"sent": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []outbox.EventRecord
	for cur.Next(ctx) {
		var doc outboxDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, outbox.EventRecord{
			ID:         doc.ID,
			Name:       doc.Name,
			Payload:    doc.Payload,
			OccurredAt: time.UnixMilli(doc.OccurredAt).UTC(),
			Aggregate:  doc.Aggregate,
			Headers:    doc.Headers,
		})
	}
	return out, cur.Err()
}

func (o *Outbox) MarkSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := o.col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"sent": true, "sent_at": time.Now().UTC().UnixMilli()}},
	)
	return err
}

type outboxDocument struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Payload    []byte            `bson:"payload"`
	OccurredAt int64             `bson:"occurred_at"`
	Aggregate  string            `bson:"aggregate"`
	Headers    map[string]string `bson:"headers"`
	Sent       bool              `bson:"sent"`
	SentAt     int64             `bson:"sent_at,omitempty"`
}
