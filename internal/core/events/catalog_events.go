package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventCatalogApproved         = "catalog.approved"
	EventCatalogRejected         = "catalog.rejected"
	EventCatalogOverrideApproved = "catalog.override_approved"
	EventPaymentSubmitted        = "payment.submitted"
)

func NewCatalogApprovedEvent(catalogID, moderatorID int64, startDate, endDate time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventCatalogApproved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"catalog_id":   catalogID,
			"moderator_id": moderatorID,
			"start_date":   startDate,
			"end_date":     endDate,
		},
	}
}

func NewCatalogRejectedEvent(catalogID, moderatorID int64, reason string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventCatalogRejected,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"catalog_id":   catalogID,
			"moderator_id": moderatorID,
			"reason":       reason,
		},
	}
}

func NewCatalogOverrideApprovedEvent(catalogID, adminID int64, startDate, endDate time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventCatalogOverrideApproved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"catalog_id": catalogID,
			"admin_id":   adminID,
			"start_date": startDate,
			"end_date":   endDate,
		},
	}
}

func NewPaymentSubmittedEvent(catalogID, memberID int64, referenceNo string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventPaymentSubmitted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"catalog_id":   catalogID,
			"member_id":    memberID,
			"reference_no": referenceNo,
		},
	}
}

// RegisterAuditSubscriber logs every moderation transition so approvals,
// overrides and rejections leave a trace in the structured log stream.
func RegisterAuditSubscriber(bus *EventBus, logger *slog.Logger) {
	audit := func(ctx context.Context, event Event) error {
		logger.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(EventCatalogApproved, audit)
	bus.Subscribe(EventCatalogRejected, audit)
	bus.Subscribe(EventCatalogOverrideApproved, audit)
	bus.Subscribe(EventPaymentSubmitted, audit)
}
