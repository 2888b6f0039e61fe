package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskBucket is the overall privacy-risk rating of an app as a whole.
// The string values flow to clients as-is and must not change.
type RiskBucket string

const (
	RiskBucketHigh   RiskBucket = "HIGH_RISK"
	RiskBucketMedium RiskBucket = "MEDIUM_RISK"
	RiskBucketLow    RiskBucket = "LOW_RISK"
	RiskBucketNone   RiskBucket = "NO_RISK"
)

// RawAppRecord is an untrusted device-sourced record. Shapes vary by
// platform and bridge version, so it stays schemaless until validated.
type RawAppRecord map[string]any

// NormalizedApp is the canonical representation of an installed app after
// validation. Field names mirror the record shape consumed by clients.
type NormalizedApp struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	PackageName           string           `json:"packageName"`
	Icon                  *string          `json:"icon"`
	Version               string           `json:"version"`
	Category              Category         `json:"category"`
	InstallDate           *string          `json:"installDate"`
	LastUsedTimestamp     *int64           `json:"lastUsedTimestamp"`
	Permissions           []string         `json:"permissions"`
	Size                  *int64           `json:"size"`
	TotalTimeInForeground int64            `json:"totalTimeInForeground"`
	LaunchCount           int64            `json:"launchCount"`
	RiskAnalysis          *AppRiskAnalysis `json:"riskAnalysis,omitempty"`
	DataUsage             *DataUsage       `json:"dataUsage,omitempty"`
}

// DataUsage is per-app network usage over the stats window, in bytes.
type DataUsage struct {
	Total    int64 `json:"total"`
	Mobile   int64 `json:"mobile"`
	Wifi     int64 `json:"wifi"`
	Sent     int64 `json:"sent"`
	Received int64 `json:"received"`
}

// NetworkUsage is the raw bridge-sourced network counter set, in bytes.
type NetworkUsage struct {
	MobileRx int64 `json:"mobileRx"`
	MobileTx int64 `json:"mobileTx"`
	WifiRx   int64 `json:"wifiRx"`
	WifiTx   int64 `json:"wifiTx"`
	TotalRx  int64 `json:"totalRx"`
	TotalTx  int64 `json:"totalTx"`
}

// AppRiskAnalysis is the derived permission-risk profile of one app.
type AppRiskAnalysis struct {
	RiskLevel       RiskBucket   `json:"riskLevel"`
	RiskScore       int          `json:"riskScore"`
	HighRiskCount   int          `json:"highRiskCount"`
	MediumRiskCount int          `json:"mediumRiskCount"`
	LowRiskCount    int          `json:"lowRiskCount"`
	RiskFactors     []RiskFactor `json:"riskFactors"`
}

// RiskFactor is one recognized permission's contribution to the risk profile.
type RiskFactor struct {
	Permission  string          `json:"permission"`
	Level       PermissionLevel `json:"level"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// PermissionDetail describes a single requested permission for display,
// including unrecognized platform permissions (defaulted to low risk).
type PermissionDetail struct {
	Name           string          `json:"name"`
	Level          PermissionLevel `json:"level"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Recommendation string          `json:"recommendation"`
}

// Advisory is a structured recommendation derived from an app's risk profile.
type Advisory struct {
	Type    string `json:"type"` // "critical", "warning", "safe"
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// PermissionAnalysis is the detailed per-permission view of an app's risk.
type PermissionAnalysis struct {
	AppRiskAnalysis
	PermissionDetails []PermissionDetail `json:"permissionDetails"`
	Recommendations   []Advisory         `json:"recommendations"`
}

// RiskBuckets partitions an app collection by overall risk rating.
type RiskBuckets struct {
	HighRisk   []NormalizedApp `json:"highRisk"`
	MediumRisk []NormalizedApp `json:"mediumRisk"`
	LowRisk    []NormalizedApp `json:"lowRisk"`
	NoRisk     []NormalizedApp `json:"noRisk"`
}

// SystemStats summarizes an app collection for dashboard widgets.
type SystemStats struct {
	TotalApps      int `json:"totalApps"`
	HighRiskApps   int `json:"highRiskApps"`
	MediumRiskApps int `json:"mediumRiskApps"`
	LowRiskApps    int `json:"lowRiskApps"`
	SafeApps       int `json:"safeApps"`
	RiskPercentage int `json:"riskPercentage"`
}

// CategoryStat holds per-category counts over an app collection.
type CategoryStat struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// DeviceSnapshot is a persisted, analyzed app inventory from one device.
type DeviceSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	DeviceID        string          `json:"device_id"`
	AppCount        int             `json:"app_count"`
	HighRiskCount   int             `json:"high_risk_count"`
	MediumRiskCount int             `json:"medium_risk_count"`
	LowRiskCount    int             `json:"low_risk_count"`
	SafeCount       int             `json:"safe_count"`
	Apps            []NormalizedApp `json:"apps"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AppReport is a user-submitted report of a suspicious app.
type AppReport struct {
	ID          uuid.UUID `json:"id"`
	DeviceID    string    `json:"device_id"`
	PackageName string    `json:"package_name"`
	AppName     string    `json:"app_name"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}
