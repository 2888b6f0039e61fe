package models

// PermissionLevel is the static risk level of a single permission.
type PermissionLevel string

const (
	PermissionLevelHigh   PermissionLevel = "HIGH"
	PermissionLevelMedium PermissionLevel = "MEDIUM"
	PermissionLevelLow    PermissionLevel = "LOW"
)

// Weight returns the risk-score contribution of the level.
func (l PermissionLevel) Weight() int {
	switch l {
	case PermissionLevelHigh:
		return 3
	case PermissionLevelMedium:
		return 2
	case PermissionLevelLow:
		return 1
	default:
		return 0
	}
}

// PermissionRisk is the static risk assessment of one recognized permission.
type PermissionRisk struct {
	Level       PermissionLevel `json:"level"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// PermissionRisks maps normalized permission names to their static risk
// assessment. Levels, descriptions and categories are part of the client
// contract; permissions outside this table score nothing.
var PermissionRisks = map[string]PermissionRisk{
	"CAMERA": {
		Level:       PermissionLevelHigh,
		Description: "Can take photos and videos without your knowledge",
		Category:    "Privacy Critical",
	},
	"LOCATION": {
		Level:       PermissionLevelHigh,
		Description: "Can track your location and movement patterns",
		Category:    "Privacy Critical",
	},
	"MICROPHONE": {
		Level:       PermissionLevelHigh,
		Description: "Can record audio and conversations",
		Category:    "Privacy Critical",
	},
	"CONTACTS": {
		Level:       PermissionLevelHigh,
		Description: "Can access your personal contacts and relationships",
		Category:    "Personal Data",
	},
	"PHONE": {
		Level:       PermissionLevelHigh,
		Description: "Can access phone numbers and call information",
		Category:    "Personal Data",
	},
	"SMS": {
		Level:       PermissionLevelHigh,
		Description: "Can read and send text messages",
		Category:    "Communications",
	},
	"STORAGE": {
		Level:       PermissionLevelMedium,
		Description: "Can access files and photos on your device",
		Category:    "Data Access",
	},
	"CALENDAR": {
		Level:       PermissionLevelMedium,
		Description: "Can view and modify your calendar events",
		Category:    "Personal Data",
	},
	"SENSORS": {
		Level:       PermissionLevelMedium,
		Description: "Can access body sensors and health data",
		Category:    "Health Data",
	},
}

// KnownPermissions lists the recognized permissions in presentation
// order, high-risk entries first.
var KnownPermissions = []string{
	"CAMERA",
	"LOCATION",
	"MICROPHONE",
	"CONTACTS",
	"PHONE",
	"SMS",
	"STORAGE",
	"CALENDAR",
	"SENSORS",
}

// UnknownPermissionRisk is the fallback assessment for permissions outside
// the table, used only where a per-permission detail row is required.
var UnknownPermissionRisk = PermissionRisk{
	Level:       PermissionLevelLow,
	Description: "System permission",
	Category:    "System",
}
