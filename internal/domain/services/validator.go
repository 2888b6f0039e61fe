package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"monitormate/internal/domain/models"
	"monitormate/pkg/logger"
)

const (
	maxStringLength = 200
	minIconLength   = 100
	dataURIPrefix   = "data:image/"
	timestampMaxAge = 365 * 24 * time.Hour
)

// Validator sanitizes untrusted device-sourced app records into canonical
// normalized records. Ingestion is best-effort: malformed records are
// dropped or defaulted, never surfaced as errors, so a single bad record
// cannot abort processing of the rest.
type Validator struct {
	logger *logger.Logger

	// now is replaceable for timestamp bounds checks in tests.
	now func() time.Time
}

// NewValidator creates a new record validator
func NewValidator(log *logger.Logger) *Validator {
	return &Validator{
		logger: log.WithComponent("validator"),
		now:    time.Now,
	}
}

// ValidateAppData sanitizes a single raw record. Returns nil when the
// record carries neither a packageName nor a bundleId.
func (v *Validator) ValidateAppData(raw models.RawAppRecord) *models.NormalizedApp {
	if raw == nil {
		return nil
	}

	packageName := asString(raw["packageName"])
	if packageName == "" {
		packageName = asString(raw["bundleId"])
	}
	if packageName == "" {
		return nil
	}

	name := sanitizeString(firstPresent(raw, "appName", "name"))
	if name == nil {
		unknown := "Unknown App"
		name = &unknown
	}

	version := sanitizeString(firstPresent(raw, "versionName", "version"))
	if version == nil {
		unknown := "Unknown"
		version = &unknown
	}

	category := models.CategoryOther
	if s := sanitizeString(raw["category"]); s != nil && *s != "" {
		category = models.Category(*s)
	}

	app := &models.NormalizedApp{
		ID:                packageName,
		Name:              *name,
		PackageName:       packageName,
		Icon:              validateIcon(raw["icon"]),
		Version:           *version,
		Category:          category,
		InstallDate:       v.validateDate(firstPresent(raw, "firstInstallTime", "installDate")),
		LastUsedTimestamp: v.validateTimestamp(firstPresent(raw, "lastTimeUsed", "lastUsedTimestamp")),
		Permissions:       validatePermissions(raw["permissions"]),
		Size:              validateNumber(raw["size"]),
	}

	if n := validateNumber(raw["totalTimeInForeground"]); n != nil {
		app.TotalTimeInForeground = *n
	}
	if n := validateNumber(raw["launchCount"]); n != nil {
		app.LaunchCount = *n
	}

	return app
}

// ValidateAppArray sanitizes a raw record list, dropping records that fail
// validation. Order of surviving records is preserved.
func (v *Validator) ValidateAppArray(raw []models.RawAppRecord) []models.NormalizedApp {
	apps := []models.NormalizedApp{}
	for _, record := range raw {
		if app := v.ValidateAppData(record); app != nil {
			apps = append(apps, *app)
		}
	}
	return apps
}

// firstPresent returns the first non-nil value among the given keys.
func firstPresent(raw models.RawAppRecord, keys ...string) any {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

// sanitizeString trims and length-caps a string value; non-string input
// yields nil.
func sanitizeString(value any) *string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if len(s) > maxStringLength {
		s = s[:maxStringLength]
	}
	if s == "" {
		return nil
	}
	return &s
}

// asString returns the value as a string, or "" for non-string input.
func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// asNumber coerces numeric and numeric-string values to float64. JSON
// decoding yields float64, but bridge payloads have also carried integer
// and string-typed counters.
func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// validateNumber accepts non-negative finite numbers only.
func validateNumber(value any) *int64 {
	if value == nil {
		return nil
	}
	n, ok := asNumber(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return nil
	}
	result := int64(n)
	return &result
}

// validateTimestamp bounds-checks an epoch-ms timestamp. Device clocks and
// usage-stats APIs can return garbage, so values in the future or older
// than a year are rejected.
func (v *Validator) validateTimestamp(value any) *int64 {
	if value == nil {
		return nil
	}
	n, ok := asNumber(value)
	if !ok || math.IsNaN(n) || n <= 0 {
		return nil
	}

	ts := int64(n)
	now := v.now().UnixMilli()
	oneYearAgo := now - timestampMaxAge.Milliseconds()
	if ts > now || ts < oneYearAgo {
		return nil
	}
	return &ts
}

// validateDate normalizes an install date (epoch ms or date string) to
// RFC 3339, or nil when it does not parse.
func (v *Validator) validateDate(value any) *string {
	if value == nil {
		return nil
	}

	if n, ok := asNumber(value); ok && !math.IsNaN(n) && n > 0 {
		s := time.UnixMilli(int64(n)).UTC().Format(time.RFC3339)
		return &s
	}

	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			formatted := t.UTC().Format(time.RFC3339)
			return &formatted
		}
	}
	return nil
}

// validatePermissions filters a raw permission list down to non-empty
// trimmed strings. Non-list input yields an empty list.
func validatePermissions(value any) []string {
	permissions := []string{}

	appendPermission := func(item any) {
		s, ok := item.(string)
		if !ok {
			return
		}
		s = strings.TrimSpace(s)
		if s != "" {
			permissions = append(permissions, s)
		}
	}

	switch list := value.(type) {
	case []any:
		for _, item := range list {
			appendPermission(item)
		}
	case []string:
		for _, item := range list {
			appendPermission(item)
		}
	}
	return permissions
}

// validateIcon accepts icon payloads that look like a data URI or exceed a
// minimum length, rejecting short placeholder strings such as "default".
func validateIcon(value any) *string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if strings.HasPrefix(s, dataURIPrefix) || len(s) > minIconLength {
		return &s
	}
	return nil
}
