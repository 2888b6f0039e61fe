package services

import (
	"strings"
	"testing"
	"time"

	"monitormate/internal/domain/models"
	"monitormate/pkg/logger"
)

func newTestValidator(now time.Time) *Validator {
	v := NewValidator(logger.NewDevelopment())
	v.now = func() time.Time { return now }
	return v
}

func TestValidateAppDataRejects(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	tests := []struct {
		name string
		raw  models.RawAppRecord
	}{
		{"nil record", nil},
		{"empty record", models.RawAppRecord{}},
		{"missing identifiers", models.RawAppRecord{"appName": "Some App"}},
		{"non-string package", models.RawAppRecord{"packageName": 42}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if app := v.ValidateAppData(tt.raw); app != nil {
				t.Errorf("ValidateAppData = %+v, want nil", app)
			}
		})
	}
}

func TestValidateAppDataDefaults(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	app := v.ValidateAppData(models.RawAppRecord{"packageName": "com.example.app"})
	if app == nil {
		t.Fatal("ValidateAppData returned nil")
	}

	if app.Name != "Unknown App" {
		t.Errorf("Name = %q, want %q", app.Name, "Unknown App")
	}
	if app.Version != "Unknown" {
		t.Errorf("Version = %q, want %q", app.Version, "Unknown")
	}
	if app.Category != models.CategoryOther {
		t.Errorf("Category = %s, want %s", app.Category, models.CategoryOther)
	}
	if app.ID != "com.example.app" {
		t.Errorf("ID = %q, want package name", app.ID)
	}
	if app.Permissions == nil || len(app.Permissions) != 0 {
		t.Errorf("Permissions = %v, want empty slice", app.Permissions)
	}
	if app.TotalTimeInForeground != 0 || app.LaunchCount != 0 {
		t.Error("usage counters must default to 0")
	}
}

func TestValidateAppDataBundleIDFallback(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	app := v.ValidateAppData(models.RawAppRecord{"bundleId": "com.example.ios"})
	if app == nil {
		t.Fatal("ValidateAppData returned nil")
	}
	if app.PackageName != "com.example.ios" {
		t.Errorf("PackageName = %q, want bundle ID", app.PackageName)
	}
}

func TestValidateAppDataStringCapping(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	long := strings.Repeat("x", 500)
	app := v.ValidateAppData(models.RawAppRecord{
		"packageName": "com.example.app",
		"appName":     "  " + long + "  ",
	})
	if app == nil {
		t.Fatal("ValidateAppData returned nil")
	}
	if len(app.Name) != 200 {
		t.Errorf("Name length = %d, want 200", len(app.Name))
	}
}

func TestValidateTimestampBounds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	v := newTestValidator(now)

	valid := float64(now.Add(-48 * time.Hour).UnixMilli())
	future := float64(now.Add(24 * time.Hour).UnixMilli())
	tooOld := float64(now.Add(-400 * 24 * time.Hour).UnixMilli())

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"recent timestamp", valid, true},
		{"future timestamp", future, false},
		{"older than a year", tooOld, false},
		{"zero", float64(0), false},
		{"negative", float64(-1), false},
		{"non-numeric", "not a number", false},
		{"numeric string", "1", false}, // epoch 1ms is older than a year
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := v.ValidateAppData(models.RawAppRecord{
				"packageName":  "com.example.app",
				"lastTimeUsed": tt.value,
			})
			if app == nil {
				t.Fatal("ValidateAppData returned nil")
			}
			got := app.LastUsedTimestamp != nil
			if got != tt.want {
				t.Errorf("LastUsedTimestamp present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateDateFormats(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"epoch millis", float64(1717200000000), "2024-06-01T00:00:00Z"},
		{"RFC3339 string", "2024-06-01T00:00:00Z", "2024-06-01T00:00:00Z"},
		{"date-only string", "2024-06-01", "2024-06-01T00:00:00Z"},
		{"garbage string", "not a date", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := v.ValidateAppData(models.RawAppRecord{
				"packageName":      "com.example.app",
				"firstInstallTime": tt.value,
			})
			if app == nil {
				t.Fatal("ValidateAppData returned nil")
			}

			if tt.want == "" {
				if app.InstallDate != nil {
					t.Errorf("InstallDate = %q, want nil", *app.InstallDate)
				}
				return
			}
			if app.InstallDate == nil || *app.InstallDate != tt.want {
				t.Errorf("InstallDate = %v, want %q", app.InstallDate, tt.want)
			}
		})
	}
}

func TestValidateIconHeuristic(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	tests := []struct {
		name string
		icon any
		want bool
	}{
		{"data URI", "data:image/png;base64,iVBOR", true},
		{"long URL", "https://cdn.example.com/" + strings.Repeat("a", 120), true},
		{"short placeholder", "default", false},
		{"non-string", 42, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := v.ValidateAppData(models.RawAppRecord{
				"packageName": "com.example.app",
				"icon":        tt.icon,
			})
			if app == nil {
				t.Fatal("ValidateAppData returned nil")
			}
			if got := app.Icon != nil; got != tt.want {
				t.Errorf("Icon present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidatePermissionsFiltering(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	app := v.ValidateAppData(models.RawAppRecord{
		"packageName": "com.example.app",
		"permissions": []any{"CAMERA", "  LOCATION  ", "", 42, nil},
	})
	if app == nil {
		t.Fatal("ValidateAppData returned nil")
	}

	want := []string{"CAMERA", "LOCATION"}
	if len(app.Permissions) != len(want) {
		t.Fatalf("Permissions = %v, want %v", app.Permissions, want)
	}
	for i := range want {
		if app.Permissions[i] != want[i] {
			t.Errorf("Permissions[%d] = %q, want %q", i, app.Permissions[i], want[i])
		}
	}
}

func TestValidateNumberRejectsNegative(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	app := v.ValidateAppData(models.RawAppRecord{
		"packageName": "com.example.app",
		"size":        float64(-1000),
		"launchCount": float64(7),
	})
	if app == nil {
		t.Fatal("ValidateAppData returned nil")
	}
	if app.Size != nil {
		t.Errorf("Size = %d, want nil for negative input", *app.Size)
	}
	if app.LaunchCount != 7 {
		t.Errorf("LaunchCount = %d, want 7", app.LaunchCount)
	}
}

func TestValidateAppArrayDropsAndPreservesOrder(t *testing.T) {
	t.Parallel()

	v := newTestValidator(time.Now())

	apps := v.ValidateAppArray([]models.RawAppRecord{
		{"packageName": "com.first"},
		nil,
		{"appName": "no identifier"},
		{"packageName": "com.second"},
	})

	if len(apps) != 2 {
		t.Fatalf("got %d apps, want 2", len(apps))
	}
	if apps[0].PackageName != "com.first" || apps[1].PackageName != "com.second" {
		t.Errorf("order not preserved: %s, %s", apps[0].PackageName, apps[1].PackageName)
	}
}

func TestValidateAppDataIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	v := newTestValidator(now)

	raw := models.RawAppRecord{
		"packageName":           "com.example.app",
		"appName":               "Example",
		"versionName":           "1.2.3",
		"permissions":           []any{"CAMERA"},
		"lastTimeUsed":          float64(now.Add(-time.Hour).UnixMilli()),
		"totalTimeInForeground": float64(5000),
		"launchCount":           float64(3),
	}

	first := v.ValidateAppData(raw)
	if first == nil {
		t.Fatal("first pass returned nil")
	}

	// Re-validating the normalized record's fields must not change them.
	second := v.ValidateAppData(models.RawAppRecord{
		"packageName":           first.PackageName,
		"appName":               first.Name,
		"versionName":           first.Version,
		"permissions":           first.Permissions,
		"lastTimeUsed":          float64(*first.LastUsedTimestamp),
		"totalTimeInForeground": float64(first.TotalTimeInForeground),
		"launchCount":           float64(first.LaunchCount),
	})
	if second == nil {
		t.Fatal("second pass returned nil")
	}

	if second.Name != first.Name || second.Version != first.Version ||
		*second.LastUsedTimestamp != *first.LastUsedTimestamp ||
		second.TotalTimeInForeground != first.TotalTimeInForeground ||
		second.LaunchCount != first.LaunchCount {
		t.Errorf("normalization not idempotent: %+v vs %+v", first, second)
	}
}
