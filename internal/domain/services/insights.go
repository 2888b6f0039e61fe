package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"monitormate/internal/domain/models"
	"monitormate/pkg/logger"
)

// defaultRecentAppsLimit caps the recent-apps selection when no limit is
// configured.
const defaultRecentAppsLimit = 5

// recentInstallWindow admits apps installed recently even without recorded
// usage, so the recent-apps view is not empty on devices where usage-stats
// permission is unavailable.
const recentInstallWindow = 30 * 24 * time.Hour

// defaultExcludedSystemApps are package patterns never treated as likely
// user apps.
var defaultExcludedSystemApps = []string{
	"com.android.systemui",
	"com.android.providers",
	"com.android.inputmethod",
	"com.google.android.gms",
	"com.google.android.inputmethod",
}

// InsightService aggregates normalized app collections into risk buckets,
// recent-apps selections and summary statistics.
type InsightService struct {
	hostPackage  string
	excluded     []string
	defaultLimit int
	logger       *logger.Logger

	// now is replaceable for install-window checks in tests.
	now func() time.Time
}

// NewInsightService creates a new insight service. The host package always
// appears in the recent-apps selection; excluded patterns suppress system
// packages from it.
func NewInsightService(hostPackage string, excludedSystemApps []string, recentAppsLimit int, log *logger.Logger) *InsightService {
	if excludedSystemApps == nil {
		excludedSystemApps = defaultExcludedSystemApps
	}
	if recentAppsLimit <= 0 {
		recentAppsLimit = defaultRecentAppsLimit
	}
	return &InsightService{
		hostPackage:  hostPackage,
		excluded:     excludedSystemApps,
		defaultLimit: recentAppsLimit,
		logger:       log.WithComponent("insights"),
		now:          time.Now,
	}
}

// CategorizeAppsByRisk partitions apps into risk buckets. Each app lands in
// exactly one bucket; apps without a risk analysis count as no-risk. The
// partition is stable: bucket order equals input order.
func (s *InsightService) CategorizeAppsByRisk(apps []models.NormalizedApp) models.RiskBuckets {
	buckets := models.RiskBuckets{
		HighRisk:   []models.NormalizedApp{},
		MediumRisk: []models.NormalizedApp{},
		LowRisk:    []models.NormalizedApp{},
		NoRisk:     []models.NormalizedApp{},
	}

	for _, app := range apps {
		level := models.RiskBucketNone
		if app.RiskAnalysis != nil {
			level = app.RiskAnalysis.RiskLevel
		}
		switch level {
		case models.RiskBucketHigh:
			buckets.HighRisk = append(buckets.HighRisk, app)
		case models.RiskBucketMedium:
			buckets.MediumRisk = append(buckets.MediumRisk, app)
		case models.RiskBucketLow:
			buckets.LowRisk = append(buckets.LowRisk, app)
		default:
			buckets.NoRisk = append(buckets.NoRisk, app)
		}
	}
	return buckets
}

// RecentApps selects and orders the most recently active apps. The
// inclusion predicate is deliberately permissive: recently installed apps
// without recorded usage are admitted, trading false positives for a
// populated view when usage stats are unavailable. limit <= 0 applies the
// configured default.
func (s *InsightService) RecentApps(apps []models.NormalizedApp, limit int) []models.NormalizedApp {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	recent := []models.NormalizedApp{}
	for _, app := range apps {
		if s.isRecent(app) {
			recent = append(recent, app)
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		a, b := recent[i], recent[j]

		// Host app sorts first.
		aHost := s.hostPackage != "" && a.PackageName == s.hostPackage
		bHost := s.hostPackage != "" && b.PackageName == s.hostPackage
		if aHost != bHost {
			return aHost
		}

		if au, bu := lastUsed(a), lastUsed(b); au != bu {
			return au > bu
		}
		if an, bn := networkTotal(a), networkTotal(b); an != bn {
			return an > bn
		}
		return usageScore(a) > usageScore(b)
	})

	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

func (s *InsightService) isRecent(app models.NormalizedApp) bool {
	if s.hostPackage != "" && app.PackageName == s.hostPackage {
		return true
	}
	if app.TotalTimeInForeground > 0 || app.LaunchCount > 0 {
		return true
	}
	if networkTotal(app) > 0 {
		return true
	}
	if s.isLikelyUserApp(app) {
		return lastUsed(app) > 0 || s.installedRecently(app)
	}
	return false
}

func (s *InsightService) isLikelyUserApp(app models.NormalizedApp) bool {
	if !strings.Contains(app.PackageName, ".") || app.Name == "" {
		return false
	}
	for _, pattern := range s.excluded {
		if strings.Contains(app.PackageName, pattern) {
			return false
		}
	}
	return true
}

func (s *InsightService) installedRecently(app models.NormalizedApp) bool {
	if app.InstallDate == nil {
		return false
	}
	installed, err := time.Parse(time.RFC3339, *app.InstallDate)
	if err != nil {
		return false
	}
	return s.now().Sub(installed) <= recentInstallWindow
}

func lastUsed(app models.NormalizedApp) int64 {
	if app.LastUsedTimestamp == nil {
		return 0
	}
	return *app.LastUsedTimestamp
}

func networkTotal(app models.NormalizedApp) int64 {
	if app.DataUsage == nil {
		return 0
	}
	return app.DataUsage.Total
}

func usageScore(app models.NormalizedApp) int64 {
	return app.TotalTimeInForeground + app.LaunchCount*1000
}

// SystemStats summarizes an app collection. riskPercentage guards against
// an empty collection.
func (s *InsightService) SystemStats(apps []models.NormalizedApp) models.SystemStats {
	buckets := s.CategorizeAppsByRisk(apps)
	stats := models.SystemStats{
		TotalApps:      len(apps),
		HighRiskApps:   len(buckets.HighRisk),
		MediumRiskApps: len(buckets.MediumRisk),
		LowRiskApps:    len(buckets.LowRisk),
		SafeApps:       len(buckets.NoRisk),
	}
	if stats.TotalApps > 0 {
		stats.RiskPercentage = int(math.Round(float64(stats.HighRiskApps) / float64(stats.TotalApps) * 100))
	}
	return stats
}

// SearchApps filters apps whose display name or package name contains the
// query, case-insensitively. An empty query returns the input unchanged.
func (s *InsightService) SearchApps(apps []models.NormalizedApp, query string) []models.NormalizedApp {
	if query == "" {
		return apps
	}
	query = strings.ToLower(query)

	matched := []models.NormalizedApp{}
	for _, app := range apps {
		if strings.Contains(strings.ToLower(app.Name), query) ||
			strings.Contains(strings.ToLower(app.PackageName), query) {
			matched = append(matched, app)
		}
	}
	return matched
}

// FilterByCategory returns the apps whose attached category matches.
func (s *InsightService) FilterByCategory(apps []models.NormalizedApp, category models.Category) []models.NormalizedApp {
	matched := []models.NormalizedApp{}
	for _, app := range apps {
		if app.Category == category {
			matched = append(matched, app)
		}
	}
	return matched
}
