package services

import (
	"fmt"
	"sort"
	"strings"

	"monitormate/internal/domain/models"
	"monitormate/pkg/logger"
)

// RiskAnalyzer scores permission sets into per-app privacy-risk profiles.
type RiskAnalyzer struct {
	logger *logger.Logger
}

// NewRiskAnalyzer creates a new risk analyzer
func NewRiskAnalyzer(log *logger.Logger) *RiskAnalyzer {
	return &RiskAnalyzer{
		logger: log.WithComponent("risk-analyzer"),
	}
}

// AnalyzeAppRisk scores a permission set into an overall risk profile.
// Unrecognized permissions are skipped silently so that noisy platform
// permission strings never inflate the score. Never fails; empty or nil
// input yields a NO_RISK profile.
func (a *RiskAnalyzer) AnalyzeAppRisk(permissions []string) models.AppRiskAnalysis {
	analysis := models.AppRiskAnalysis{
		RiskLevel:   models.RiskBucketNone,
		RiskFactors: []models.RiskFactor{},
	}
	if len(permissions) == 0 {
		return analysis
	}

	for _, permission := range permissions {
		risk, ok := models.PermissionRisks[permission]
		if !ok {
			continue
		}

		analysis.RiskFactors = append(analysis.RiskFactors, models.RiskFactor{
			Permission:  permission,
			Level:       risk.Level,
			Description: risk.Description,
			Category:    risk.Category,
		})

		analysis.RiskScore += risk.Level.Weight()
		switch risk.Level {
		case models.PermissionLevelHigh:
			analysis.HighRiskCount++
		case models.PermissionLevelMedium:
			analysis.MediumRiskCount++
		case models.PermissionLevelLow:
			analysis.LowRiskCount++
		}
	}

	// Highest severity first; insertion order breaks ties.
	sort.SliceStable(analysis.RiskFactors, func(i, j int) bool {
		return analysis.RiskFactors[i].Level.Weight() > analysis.RiskFactors[j].Level.Weight()
	})

	analysis.RiskLevel = overallRiskBucket(analysis.HighRiskCount, analysis.RiskScore)
	return analysis
}

// overallRiskBucket applies the bucket thresholds in order; first match wins.
func overallRiskBucket(highRiskCount, riskScore int) models.RiskBucket {
	switch {
	case highRiskCount >= 3 || riskScore >= 8:
		return models.RiskBucketHigh
	case highRiskCount >= 1 || riskScore >= 4:
		return models.RiskBucketMedium
	case riskScore >= 1:
		return models.RiskBucketLow
	default:
		return models.RiskBucketNone
	}
}

// PermissionAnalysis returns the full risk profile plus a per-permission
// detail row for every requested permission, including unrecognized ones.
func (a *RiskAnalyzer) PermissionAnalysis(permissions []string) models.PermissionAnalysis {
	analysis := models.PermissionAnalysis{
		AppRiskAnalysis:   a.AnalyzeAppRisk(permissions),
		PermissionDetails: []models.PermissionDetail{},
	}

	for _, permission := range permissions {
		risk, ok := models.PermissionRisks[permission]
		if !ok {
			risk = models.UnknownPermissionRisk
		}
		analysis.PermissionDetails = append(analysis.PermissionDetails, models.PermissionDetail{
			Name:           permission,
			Level:          risk.Level,
			Description:    risk.Description,
			Category:       risk.Category,
			Recommendation: permissionRecommendation(permission, risk.Level),
		})
	}

	analysis.Recommendations = appAdvisories(analysis.AppRiskAnalysis)
	return analysis
}

// permissionRecommendation returns a level-appropriate advisory string for
// a single permission.
func permissionRecommendation(permission string, level models.PermissionLevel) string {
	name := strings.ToLower(permission)
	switch level {
	case models.PermissionLevelHigh:
		return fmt.Sprintf("High risk: review why this app needs %s access. Consider alternatives or disable it if not essential.", name)
	case models.PermissionLevelMedium:
		return fmt.Sprintf("Medium risk: monitor use of %s access and review it periodically.", name)
	case models.PermissionLevelLow:
		return fmt.Sprintf("Low risk: %s access is generally safe for this type of app.", name)
	default:
		return "Safe: this permission is typically safe."
	}
}

// appAdvisories derives structured advisories from count thresholds. The
// checks are independent, so a critical and a warning advisory can appear
// together.
func appAdvisories(analysis models.AppRiskAnalysis) []models.Advisory {
	advisories := []models.Advisory{}

	if analysis.HighRiskCount >= 3 {
		advisories = append(advisories, models.Advisory{
			Type:    "critical",
			Title:   "High Privacy Risk",
			Message: "This app has multiple high-risk permissions. Consider if you really need all these features.",
			Action:  "Review permissions in device settings",
		})
	}

	if analysis.HighRiskCount >= 1 {
		advisories = append(advisories, models.Advisory{
			Type:    "warning",
			Title:   "Privacy Sensitive",
			Message: "This app can access sensitive data. Monitor its behavior regularly.",
			Action:  "Check app activity periodically",
		})
	}

	if analysis.RiskScore == 0 {
		advisories = append(advisories, models.Advisory{
			Type:    "safe",
			Title:   "Low Privacy Impact",
			Message: "This app has minimal privacy risks.",
			Action:  "No immediate action needed",
		})
	}

	return advisories
}
