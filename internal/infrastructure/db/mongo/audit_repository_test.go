package mongo

import (
	"testing"
	"time"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

func TestToAuditDoc(t *testing.T) {
	occurred := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CLT", -3*3600))
	recorded := occurred.Add(time.Second)

	doc := toAuditDoc(domain.AuditEvent{
		Kind:       domain.AuditPhotoCleanupFailed,
		SkaterID:   4,
		Detail:     "img-abcd-pic.png",
		OccurredAt: occurred,
	}, recorded)

	if doc.Kind != "photo_cleanup_failed" || doc.SkaterID != 4 || doc.Detail != "img-abcd-pic.png" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	if doc.ActorID != 0 {
		t.Fatalf("expected empty actor, got %d", doc.ActorID)
	}
	if doc.OccurredAt.Location() != time.UTC || !doc.OccurredAt.Equal(occurred) {
		t.Fatalf("expected occurred_at normalised to UTC, got %v", doc.OccurredAt)
	}
	if !doc.RecordedAt.Equal(recorded) {
		t.Fatalf("unexpected recorded_at %v", doc.RecordedAt)
	}
}
