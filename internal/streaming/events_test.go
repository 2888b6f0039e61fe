package streaming

import (
	"testing"

	"github.com/google/uuid"

	"monitormate/internal/domain/models"
)

func highRiskEvent(deviceID string, category models.Category) *AppEvent {
	app := &models.NormalizedApp{
		Name:        "Example",
		PackageName: "com.example.app",
		Category:    category,
		RiskAnalysis: &models.AppRiskAnalysis{
			RiskLevel: models.RiskBucketHigh,
			RiskScore: 9,
		},
	}
	return NewHighRiskEvent(deviceID, uuid.New().String(), app)
}

func TestSubscriptionMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		sub   Subscription
		event *AppEvent
		want  bool
	}{
		{
			name:  "empty subscription matches app events",
			sub:   Subscription{},
			event: highRiskEvent("dev-1", models.CategorySocial),
			want:  true,
		},
		{
			name:  "device filter match",
			sub:   Subscription{DeviceIDs: []string{"dev-1", "dev-2"}},
			event: highRiskEvent("dev-2", models.CategorySocial),
			want:  true,
		},
		{
			name:  "device filter mismatch",
			sub:   Subscription{DeviceIDs: []string{"dev-1"}},
			event: highRiskEvent("dev-9", models.CategorySocial),
			want:  false,
		},
		{
			name:  "min risk satisfied",
			sub:   Subscription{MinRisk: models.RiskBucketMedium},
			event: highRiskEvent("dev-1", models.CategorySocial),
			want:  true,
		},
		{
			name:  "category filter match",
			sub:   Subscription{Categories: []models.Category{models.CategoryFinance, models.CategorySocial}},
			event: highRiskEvent("dev-1", models.CategorySocial),
			want:  true,
		},
		{
			name:  "category filter mismatch",
			sub:   Subscription{Categories: []models.Category{models.CategoryFinance}},
			event: highRiskEvent("dev-1", models.CategoryGames),
			want:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.sub.Matches(tt.event); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionMinRiskRejectsLower(t *testing.T) {
	t.Parallel()

	app := &models.NormalizedApp{
		PackageName:  "com.example.app",
		RiskAnalysis: &models.AppRiskAnalysis{RiskLevel: models.RiskBucketLow},
	}
	event := NewHighRiskEvent("dev-1", uuid.New().String(), app)

	sub := Subscription{MinRisk: models.RiskBucketHigh}
	if sub.Matches(event) {
		t.Error("LOW_RISK event must not match a HIGH_RISK minimum")
	}
}

func TestSubscriptionSnapshotGate(t *testing.T) {
	t.Parallel()

	snapshot := &models.DeviceSnapshot{
		ID:            uuid.New(),
		DeviceID:      "dev-1",
		AppCount:      42,
		HighRiskCount: 3,
	}
	event := NewSnapshotEvent(snapshot)

	if (&Subscription{}).Matches(event) {
		t.Error("snapshot events must be excluded by default")
	}
	if !(&Subscription{IncludeSnapshots: true}).Matches(event) {
		t.Error("snapshot events must match when opted in")
	}

	// Device filter still applies to snapshot events.
	sub := Subscription{IncludeSnapshots: true, DeviceIDs: []string{"dev-2"}}
	if sub.Matches(event) {
		t.Error("snapshot event for another device must not match")
	}
}

func TestNewSnapshotEventFields(t *testing.T) {
	t.Parallel()

	snapshot := &models.DeviceSnapshot{
		ID:            uuid.New(),
		DeviceID:      "dev-1",
		AppCount:      10,
		HighRiskCount: 2,
	}

	event := NewSnapshotEvent(snapshot)

	if event.Type != EventTypeSnapshotIngested {
		t.Errorf("Type = %s", event.Type)
	}
	if event.DeviceID != "dev-1" || event.SnapshotID != snapshot.ID.String() {
		t.Error("snapshot identifiers not carried over")
	}
	if event.AppCount != 10 || event.HighRiskCount != 2 {
		t.Error("snapshot summary not carried over")
	}
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Error("event identity fields must be populated")
	}
}
