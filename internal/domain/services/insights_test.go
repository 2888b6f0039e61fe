package services

import (
	"testing"
	"time"

	"monitormate/internal/domain/models"
	"monitormate/pkg/logger"
)

const testHostPackage = "com.mobilemonitor"

func newTestInsightService(limit int) *InsightService {
	return NewInsightService(testHostPackage, nil, limit, logger.NewDevelopment())
}

func appWithRisk(pkg string, level models.RiskBucket) models.NormalizedApp {
	return models.NormalizedApp{
		Name:         pkg,
		PackageName:  pkg,
		RiskAnalysis: &models.AppRiskAnalysis{RiskLevel: level},
	}
}

func TestCategorizeAppsByRisk(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(0)

	apps := []models.NormalizedApp{
		appWithRisk("com.a", models.RiskBucketHigh),
		appWithRisk("com.b", models.RiskBucketLow),
		appWithRisk("com.c", models.RiskBucketHigh),
		appWithRisk("com.d", models.RiskBucketMedium),
		{Name: "no analysis", PackageName: "com.e"},
	}

	buckets := s.CategorizeAppsByRisk(apps)

	if len(buckets.HighRisk) != 2 || len(buckets.MediumRisk) != 1 ||
		len(buckets.LowRisk) != 1 || len(buckets.NoRisk) != 1 {
		t.Fatalf("bucket sizes = %d/%d/%d/%d, want 2/1/1/1",
			len(buckets.HighRisk), len(buckets.MediumRisk), len(buckets.LowRisk), len(buckets.NoRisk))
	}

	// Partition is stable: high-risk apps keep input order.
	if buckets.HighRisk[0].PackageName != "com.a" || buckets.HighRisk[1].PackageName != "com.c" {
		t.Error("high-risk bucket order does not match input order")
	}

	// Missing analysis lands in the no-risk bucket.
	if buckets.NoRisk[0].PackageName != "com.e" {
		t.Error("app without risk analysis must land in NoRisk")
	}
}

func TestCategorizeAppsByRiskEmpty(t *testing.T) {
	t.Parallel()

	buckets := newTestInsightService(0).CategorizeAppsByRisk(nil)
	if buckets.HighRisk == nil || buckets.MediumRisk == nil || buckets.LowRisk == nil || buckets.NoRisk == nil {
		t.Error("buckets must be empty slices, never nil")
	}
}

func TestRecentAppsPredicate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestInsightService(100)
	s.now = func() time.Time { return now }

	lastWeek := now.Add(-7 * 24 * time.Hour).UnixMilli()
	installedLastWeek := now.Add(-7 * 24 * time.Hour).Format(time.RFC3339)
	installedLastYear := now.Add(-300 * 24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name string
		app  models.NormalizedApp
		want bool
	}{
		{
			name: "host app always included",
			app:  models.NormalizedApp{PackageName: testHostPackage},
			want: true,
		},
		{
			name: "foreground time",
			app:  models.NormalizedApp{PackageName: "com.a", TotalTimeInForeground: 1},
			want: true,
		},
		{
			name: "launch count",
			app:  models.NormalizedApp{PackageName: "com.b", LaunchCount: 1},
			want: true,
		},
		{
			name: "network traffic",
			app:  models.NormalizedApp{PackageName: "com.c", DataUsage: &models.DataUsage{Total: 1024}},
			want: true,
		},
		{
			name: "user app with last-used timestamp",
			app:  models.NormalizedApp{PackageName: "com.d.app", Name: "D", LastUsedTimestamp: &lastWeek},
			want: true,
		},
		{
			name: "user app installed recently",
			app:  models.NormalizedApp{PackageName: "com.e.app", Name: "E", InstallDate: &installedLastWeek},
			want: true,
		},
		{
			name: "user app with no signals",
			app:  models.NormalizedApp{PackageName: "com.f.app", Name: "F", InstallDate: &installedLastYear},
			want: false,
		},
		{
			name: "excluded system package",
			app:  models.NormalizedApp{PackageName: "com.google.android.gms", Name: "Play Services", LastUsedTimestamp: &lastWeek},
			want: false,
		},
		{
			name: "undotted package",
			app:  models.NormalizedApp{PackageName: "shell", Name: "Shell", LastUsedTimestamp: &lastWeek},
			want: false,
		},
		{
			name: "nameless app",
			app:  models.NormalizedApp{PackageName: "com.g.app", LastUsedTimestamp: &lastWeek},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recent := s.RecentApps([]models.NormalizedApp{tt.app}, 0)
			if got := len(recent) == 1; got != tt.want {
				t.Errorf("included = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecentAppsOrdering(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(10)

	ts := func(offset int64) *int64 { v := int64(1000000) + offset; return &v }

	apps := []models.NormalizedApp{
		{PackageName: "com.older", Name: "Older", LastUsedTimestamp: ts(0), LaunchCount: 1},
		{PackageName: "com.newer", Name: "Newer", LastUsedTimestamp: ts(100), LaunchCount: 1},
		{PackageName: testHostPackage, Name: "Host"},
		{PackageName: "com.heavy", Name: "Heavy", LastUsedTimestamp: ts(0), LaunchCount: 1, DataUsage: &models.DataUsage{Total: 5000}},
	}

	recent := s.RecentApps(apps, 0)

	want := []string{testHostPackage, "com.newer", "com.heavy", "com.older"}
	if len(recent) != len(want) {
		t.Fatalf("got %d apps, want %d", len(recent), len(want))
	}
	for i, pkg := range want {
		if recent[i].PackageName != pkg {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].PackageName, pkg)
		}
	}
}

func TestRecentAppsUsageScoreTiebreak(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(10)

	// Same lastUsed and network; 2 launches (2000 points) beats 1500ms foreground.
	apps := []models.NormalizedApp{
		{PackageName: "com.fg", Name: "FG", TotalTimeInForeground: 1500},
		{PackageName: "com.launches", Name: "Launches", LaunchCount: 2},
	}

	recent := s.RecentApps(apps, 0)
	if len(recent) != 2 {
		t.Fatalf("got %d apps, want 2", len(recent))
	}
	if recent[0].PackageName != "com.launches" {
		t.Errorf("recent[0] = %s, want com.launches", recent[0].PackageName)
	}
}

func TestRecentAppsLimit(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(2)

	apps := []models.NormalizedApp{
		{PackageName: "com.a", Name: "A", LaunchCount: 3},
		{PackageName: "com.b", Name: "B", LaunchCount: 2},
		{PackageName: "com.c", Name: "C", LaunchCount: 1},
	}

	if got := len(s.RecentApps(apps, 0)); got != 2 {
		t.Errorf("default limit: got %d apps, want 2", got)
	}
	if got := len(s.RecentApps(apps, 1)); got != 1 {
		t.Errorf("explicit limit: got %d apps, want 1", got)
	}
}

func TestSystemStats(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(0)

	apps := []models.NormalizedApp{
		appWithRisk("com.a", models.RiskBucketHigh),
		appWithRisk("com.b", models.RiskBucketMedium),
		appWithRisk("com.c", models.RiskBucketNone),
	}

	stats := s.SystemStats(apps)

	if stats.TotalApps != 3 || stats.HighRiskApps != 1 || stats.MediumRiskApps != 1 || stats.SafeApps != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.RiskPercentage != 33 {
		t.Errorf("RiskPercentage = %d, want 33", stats.RiskPercentage)
	}
}

func TestSystemStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := newTestInsightService(0).SystemStats(nil)
	if stats.TotalApps != 0 || stats.RiskPercentage != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}

func TestSearchApps(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(0)

	apps := []models.NormalizedApp{
		{Name: "WhatsApp", PackageName: "com.whatsapp"},
		{Name: "Telegram", PackageName: "org.telegram.messenger"},
	}

	if got := s.SearchApps(apps, "whats"); len(got) != 1 || got[0].Name != "WhatsApp" {
		t.Errorf("name search failed: %v", got)
	}
	if got := s.SearchApps(apps, "TELEGRAM"); len(got) != 1 {
		t.Errorf("case-insensitive package search failed: %v", got)
	}
	if got := s.SearchApps(apps, ""); len(got) != 2 {
		t.Errorf("empty query must return all apps: %v", got)
	}
}

func TestFilterByCategory(t *testing.T) {
	t.Parallel()

	s := newTestInsightService(0)

	apps := []models.NormalizedApp{
		{PackageName: "com.a", Category: models.CategorySocial},
		{PackageName: "com.b", Category: models.CategoryGames},
	}

	got := s.FilterByCategory(apps, models.CategorySocial)
	if len(got) != 1 || got[0].PackageName != "com.a" {
		t.Errorf("FilterByCategory = %v", got)
	}
}
