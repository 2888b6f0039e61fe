package streaming

import (
	"time"

	"github.com/google/uuid"

	"monitormate/internal/domain/models"
)

// EventType represents the type of app insight event
type EventType string

const (
	EventTypeSnapshotIngested EventType = "snapshot_ingested"
	EventTypeHighRiskDetected EventType = "high_risk_detected"
)

// AppEvent represents a real-time app insight event
type AppEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	DeviceID   string `json:"device_id"`
	SnapshotID string `json:"snapshot_id,omitempty"`

	// App details, set on per-app events
	PackageName string            `json:"package_name,omitempty"`
	AppName     string            `json:"app_name,omitempty"`
	RiskLevel   models.RiskBucket `json:"risk_level,omitempty"`
	RiskScore   int               `json:"risk_score,omitempty"`
	Category    models.Category   `json:"category,omitempty"`

	// Snapshot summary, set on snapshot events
	AppCount      int `json:"app_count,omitempty"`
	HighRiskCount int `json:"high_risk_count,omitempty"`
}

// NewSnapshotEvent creates an event for an ingested device snapshot
func NewSnapshotEvent(snapshot *models.DeviceSnapshot) *AppEvent {
	return &AppEvent{
		ID:            uuid.New().String(),
		Type:          EventTypeSnapshotIngested,
		Timestamp:     time.Now(),
		DeviceID:      snapshot.DeviceID,
		SnapshotID:    snapshot.ID.String(),
		AppCount:      snapshot.AppCount,
		HighRiskCount: snapshot.HighRiskCount,
	}
}

// NewHighRiskEvent creates an event for a high-risk app found in a snapshot
func NewHighRiskEvent(deviceID, snapshotID string, app *models.NormalizedApp) *AppEvent {
	event := &AppEvent{
		ID:          uuid.New().String(),
		Type:        EventTypeHighRiskDetected,
		Timestamp:   time.Now(),
		DeviceID:    deviceID,
		SnapshotID:  snapshotID,
		PackageName: app.PackageName,
		AppName:     app.Name,
		Category:    app.Category,
	}
	if app.RiskAnalysis != nil {
		event.RiskLevel = app.RiskAnalysis.RiskLevel
		event.RiskScore = app.RiskAnalysis.RiskScore
	}
	return event
}

// riskOrder ranks risk buckets for subscription filtering.
var riskOrder = map[models.RiskBucket]int{
	models.RiskBucketNone:   1,
	models.RiskBucketLow:    2,
	models.RiskBucketMedium: 3,
	models.RiskBucketHigh:   4,
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter per-app events by minimum risk bucket (empty = all)
	MinRisk models.RiskBucket `json:"min_risk,omitempty"`

	// Filter per-app events by category (empty = all)
	Categories []models.Category `json:"categories,omitempty"`

	// Filter by device (empty = all)
	DeviceIDs []string `json:"device_ids,omitempty"`

	// Include snapshot-ingested events
	IncludeSnapshots bool `json:"include_snapshots,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *AppEvent) bool {
	// Check device
	if len(s.DeviceIDs) > 0 {
		found := false
		for _, id := range s.DeviceIDs {
			if id == event.DeviceID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Snapshot events carry no per-app fields; gate them separately
	if event.Type == EventTypeSnapshotIngested {
		return s.IncludeSnapshots
	}

	// Check risk level
	if s.MinRisk != "" && riskOrder[event.RiskLevel] < riskOrder[s.MinRisk] {
		return false
	}

	// Check categories
	if len(s.Categories) > 0 {
		found := false
		for _, c := range s.Categories {
			if c == event.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
