package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

const auditCollection = "skater_audit"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection), now: time.Now}
}

type auditDoc struct {
	Kind       string    `bson:"kind"`
	SkaterID   int64     `bson:"skater_id"`
	ActorID    int64     `bson:"actor_id,omitempty"`
	Detail     string    `bson:"detail,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
	RecordedAt time.Time `bson:"recorded_at"`
}

func toAuditDoc(e domain.AuditEvent, recordedAt time.Time) auditDoc {
	return auditDoc{
		Kind:       string(e.Kind),
		SkaterID:   e.SkaterID,
		ActorID:    e.ActorID,
		Detail:     e.Detail,
		OccurredAt: e.OccurredAt.UTC(),
		RecordedAt: recordedAt.UTC(),
	}
}

// Insert appends a lifecycle event to the audit collection.
func (r *AuditRepository) Insert(ctx context.Context, e domain.AuditEvent) error {
	if _, err := r.coll.InsertOne(ctx, toAuditDoc(e, r.now())); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes used by audit lookups.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "skater_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "occurred_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create audit indexes: %w", err)
	}
	return nil
}
