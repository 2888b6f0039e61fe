package streaming

import (
	"context"

	"monitormate/internal/domain/models"
)

// EventBusPublisher implements services.EventPublisher using the EventBus
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

// PublishSnapshotIngested publishes an event for a newly ingested device snapshot
func (p *EventBusPublisher) PublishSnapshotIngested(ctx context.Context, snapshot *models.DeviceSnapshot) error {
	event := NewSnapshotEvent(snapshot)

	// Publish to event bus (NATS + local subscribers)
	if p.eventBus != nil {
		if err := p.eventBus.Publish(ctx, event); err != nil {
			return err
		}
	}

	// Broadcast to WebSocket clients (mobile apps)
	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}

	return nil
}

// PublishHighRisk publishes an event for a high-risk app found in a snapshot
func (p *EventBusPublisher) PublishHighRisk(ctx context.Context, deviceID string, snapshotID string, app *models.NormalizedApp) error {
	event := NewHighRiskEvent(deviceID, snapshotID, app)

	if p.eventBus != nil {
		if err := p.eventBus.Publish(ctx, event); err != nil {
			return err
		}
	}

	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}

	return nil
}
