package services

import (
	"context"
	"testing"

	"monitormate/internal/config"
	"monitormate/internal/domain/models"
	"monitormate/pkg/logger"
)

type capturingPublisher struct {
	snapshots []*models.DeviceSnapshot
	highRisk  []*models.NormalizedApp
}

func (p *capturingPublisher) PublishSnapshotIngested(_ context.Context, snapshot *models.DeviceSnapshot) error {
	p.snapshots = append(p.snapshots, snapshot)
	return nil
}

func (p *capturingPublisher) PublishHighRisk(_ context.Context, _ string, _ string, app *models.NormalizedApp) error {
	p.highRisk = append(p.highRisk, app)
	return nil
}

func newTestSnapshotService(publisher EventPublisher) *SnapshotService {
	log := logger.NewDevelopment()
	return NewSnapshotService(
		NewValidator(log),
		NewCategorizer(),
		NewRiskAnalyzer(log),
		NewInsightService(testHostPackage, nil, 0, log),
		nil, // no database
		nil, // no cache
		publisher,
		config.InsightsConfig{MaxBatchSize: 10},
		log,
	)
}

func TestAnalyzeAppPipeline(t *testing.T) {
	t.Parallel()

	s := newTestSnapshotService(nil)

	app := s.AnalyzeApp(models.RawAppRecord{
		"packageName": "com.whatsapp",
		"appName":     "WhatsApp",
		"permissions": []any{"CAMERA", "MICROPHONE", "CONTACTS"},
		"networkUsage": map[string]any{
			"mobileRx": float64(1000),
			"mobileTx": float64(500),
			"wifiRx":   float64(2000),
			"wifiTx":   float64(250),
		},
	})
	if app == nil {
		t.Fatal("AnalyzeApp returned nil")
	}

	if app.Category != models.CategoryCommunication {
		t.Errorf("Category = %s, want %s", app.Category, models.CategoryCommunication)
	}
	if app.RiskAnalysis == nil {
		t.Fatal("RiskAnalysis not attached")
	}
	if app.RiskAnalysis.RiskLevel != models.RiskBucketHigh {
		t.Errorf("RiskLevel = %s, want %s", app.RiskAnalysis.RiskLevel, models.RiskBucketHigh)
	}
	if app.DataUsage == nil {
		t.Fatal("DataUsage not attached")
	}
	if app.DataUsage.Total != 3750 {
		t.Errorf("DataUsage.Total = %d, want 3750", app.DataUsage.Total)
	}
	if app.DataUsage.Mobile != 1500 || app.DataUsage.Wifi != 2250 {
		t.Errorf("DataUsage split = {mobile %d, wifi %d}, want {1500, 2250}", app.DataUsage.Mobile, app.DataUsage.Wifi)
	}
	if app.DataUsage.Sent != 750 || app.DataUsage.Received != 3000 {
		t.Errorf("DataUsage direction = {sent %d, received %d}, want {750, 3000}", app.DataUsage.Sent, app.DataUsage.Received)
	}
}

func TestAnalyzeAppKeepsProvidedCategory(t *testing.T) {
	t.Parallel()

	s := newTestSnapshotService(nil)

	app := s.AnalyzeApp(models.RawAppRecord{
		"packageName": "com.example.unknownapp",
		"appName":     "Mystery",
		"category":    "Finance",
	})
	if app == nil {
		t.Fatal("AnalyzeApp returned nil")
	}
	if app.Category != models.CategoryFinance {
		t.Errorf("Category = %s, want provided Finance", app.Category)
	}
}

func TestAnalyzeAppsDropsInvalid(t *testing.T) {
	t.Parallel()

	s := newTestSnapshotService(nil)

	apps := s.AnalyzeApps([]models.RawAppRecord{
		{"packageName": "com.first"},
		{"appName": "no identifier"},
		{"packageName": "com.second"},
	})

	if len(apps) != 2 {
		t.Fatalf("got %d apps, want 2", len(apps))
	}
	if apps[0].PackageName != "com.first" || apps[1].PackageName != "com.second" {
		t.Error("input order not preserved")
	}
}

func TestIngestSnapshotWithoutStorage(t *testing.T) {
	t.Parallel()

	publisher := &capturingPublisher{}
	s := newTestSnapshotService(publisher)

	raw := []models.RawAppRecord{
		{"packageName": "com.risky", "appName": "Risky", "permissions": []any{"CAMERA", "LOCATION", "MICROPHONE"}},
		{"packageName": "com.safe", "appName": "Safe"},
	}

	snapshot, err := s.IngestSnapshot(context.Background(), "dev-1", raw)
	if err != nil {
		t.Fatalf("IngestSnapshot failed: %v", err)
	}

	if snapshot.DeviceID != "dev-1" || snapshot.AppCount != 2 {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if snapshot.HighRiskCount != 1 || snapshot.SafeCount != 1 {
		t.Errorf("counts = high %d, safe %d, want 1/1", snapshot.HighRiskCount, snapshot.SafeCount)
	}

	if len(publisher.snapshots) != 1 {
		t.Errorf("published %d snapshot events, want 1", len(publisher.snapshots))
	}
	if len(publisher.highRisk) != 1 || publisher.highRisk[0].PackageName != "com.risky" {
		t.Errorf("published high-risk events = %v", publisher.highRisk)
	}
}

func TestIngestSnapshotValidation(t *testing.T) {
	t.Parallel()

	s := newTestSnapshotService(nil)

	if _, err := s.IngestSnapshot(context.Background(), "", nil); err == nil {
		t.Error("empty device ID must be rejected")
	}

	oversized := make([]models.RawAppRecord, 11)
	for i := range oversized {
		oversized[i] = models.RawAppRecord{"packageName": "com.example"}
	}
	if _, err := s.IngestSnapshot(context.Background(), "dev-1", oversized); err == nil {
		t.Error("oversized batch must be rejected")
	}
}

func TestLatestSnapshotWithoutStorage(t *testing.T) {
	t.Parallel()

	s := newTestSnapshotService(nil)

	snapshot, err := s.LatestSnapshot(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snapshot != nil {
		t.Errorf("snapshot = %+v, want nil without storage", snapshot)
	}
}
